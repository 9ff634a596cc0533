package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s47195385/nbtex"
	"github.com/s47195385/nbtex/internal/config"
	"github.com/s47195385/nbtex/internal/fileutil"
)

// run dispatches to the requested mode and returns the process exit code.
func run(ctx context.Context, env *Environment, flags *cliFlags, paths []string) int {
	if flags.version {
		fmt.Fprintf(env.Stdout, "nbtex %s\n", Version)
		return exitSuccess
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitGeneral
	}

	conv := newConverter(env, cfg, flags)

	if flags.doctor {
		return runDoctor(ctx, env, conv)
	}

	if len(paths) == 0 {
		fmt.Fprintln(env.Stderr, "no input notebooks given")
		return exitUsage
	}

	// Short-circuit the whole batch when the external tool cannot be
	// invoked at all.
	if !conv.Available(ctx) {
		fmt.Fprintln(env.Stderr, "external conversion tool unavailable; run \"nbtex doctor\" for details")
		return exitGeneral
	}

	if flags.watch {
		return runWatch(ctx, env, conv, cfg, flags, paths[0])
	}

	return runBatch(ctx, env, conv, cfg, flags, paths)
}

func newConverter(env *Environment, cfg *config.Config, flags *cliFlags) *nbtex.Converter {
	opts := []nbtex.Option{
		nbtex.WithKeepTemp(flags.keepTemp || cfg.Convert.KeepTemp),
	}
	if flags.verbose {
		opts = append(opts, nbtex.WithLogger(env.Logger))
	}
	if len(cfg.Tool.Candidates) > 0 {
		candidates := make([]nbtex.Invocation, len(cfg.Tool.Candidates))
		for i, c := range cfg.Tool.Candidates {
			candidates[i] = nbtex.Invocation{Name: c.Name, Args: c.Args}
		}
		opts = append(opts, nbtex.WithCandidates(candidates))
	}
	return nbtex.NewConverter(opts...)
}

// runBatch converts each notebook, bounded by the worker limit. Per-file
// failures are reported and the batch continues with the remaining inputs.
func runBatch(ctx context.Context, env *Environment, conv *nbtex.Converter, cfg *config.Config, flags *cliFlags, paths []string) int {
	workers := flags.workers
	if workers == 0 {
		workers = cfg.Convert.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	failures := make([]error, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := conv.Convert(ctx, buildInput(cfg, flags, path))
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", path, err)
				env.Logger.Error("conversion failed",
					slog.String("notebook", path),
					slog.String("error", err.Error()))
				// Per-document failures do not cancel the group.
				return nil
			}
			fmt.Fprintf(env.Stdout, "%s -> %s\n", path, res.OutputPath)
			return nil
		})
	}
	_ = g.Wait()

	code := exitSuccess
	for _, err := range failures {
		if err != nil {
			fmt.Fprintln(env.Stderr, err)
			code = exitGeneral
		}
	}
	return code
}

func buildInput(cfg *config.Config, flags *cliFlags, path string) nbtex.Input {
	input := nbtex.Input{NotebookPath: path}

	outputDir := flags.outputDir
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}
	if outputDir != "" {
		input.OutputPath = filepath.Join(outputDir, fileutil.Stem(path)+".tex")
	}

	rootDir := flags.rootDir
	if rootDir == "" {
		rootDir = cfg.Convert.RootDir
	}
	input.RootDir = rootDir

	return input
}
