package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all parsed command-line flags.
type cliFlags struct {
	config    string
	outputDir string
	rootDir   string
	workers   int
	verbose   bool
	keepTemp  bool
	watch     bool
	version   bool
	doctor    bool
}

// parseFlags parses args into flags and positional notebook paths. The
// "doctor" subcommand is recognized as the first positional argument.
func parseFlags(args []string) (*cliFlags, []string, error) {
	flags := &cliFlags{}

	fs := flag.NewFlagSet("nbtex", flag.ContinueOnError)
	fs.StringVarP(&flags.config, "config", "c", "", "YAML config file")
	fs.StringVarP(&flags.outputDir, "output-dir", "o", "", "output directory (default: next to each input)")
	fs.StringVar(&flags.rootDir, "root-dir", "", "directory for resolving directive sources (default: each input's directory)")
	fs.IntVarP(&flags.workers, "workers", "w", 0, "concurrent conversions (0 = number of CPUs)")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVar(&flags.keepTemp, "keep-temp", false, "retain intermediate artifacts")
	fs.BoolVar(&flags.watch, "watch", false, "re-convert when the input notebook changes (single input only)")
	fs.BoolVar(&flags.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	paths := fs.Args()
	if len(paths) > 0 && paths[0] == "doctor" {
		flags.doctor = true
		paths = paths[1:]
	}

	if flags.watch && len(paths) != 1 {
		return nil, nil, fmt.Errorf("--watch requires exactly one notebook")
	}

	return flags, paths, nil
}
