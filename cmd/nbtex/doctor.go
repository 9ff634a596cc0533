package main

import (
	"context"
	"fmt"
	"os"

	"github.com/s47195385/nbtex"
)

// runDoctor reports whether the environment can run conversions: external
// tool availability and temp-directory writability.
// Exit codes: 0 = ready, 1 = problems found.
func runDoctor(ctx context.Context, env *Environment, conv *nbtex.Converter) int {
	problems := 0

	if conv.Available(ctx) {
		fmt.Fprintln(env.Stdout, "external conversion tool: available")
	} else {
		fmt.Fprintln(env.Stdout, "external conversion tool: NOT FOUND (install jupyter nbconvert)")
		problems++
	}

	if tempWritable() {
		fmt.Fprintln(env.Stdout, "temp directory: writable")
	} else {
		fmt.Fprintln(env.Stdout, "temp directory: NOT WRITABLE")
		problems++
	}

	fmt.Fprintf(env.Stdout, "nbtex %s\n", Version)

	if problems > 0 {
		return exitGeneral
	}
	return exitSuccess
}

func tempWritable() bool {
	f, err := os.CreateTemp("", "nbtex-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
