package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/s47195385/nbtex"
	"github.com/s47195385/nbtex/internal/config"
)

// watchDebounce coalesces editor save bursts into one conversion.
const watchDebounce = 300 * time.Millisecond

// runWatch converts the notebook once, then re-converts on every change
// until the context is cancelled.
func runWatch(ctx context.Context, env *Environment, conv *nbtex.Converter, cfg *config.Config, flags *cliFlags, path string) int {
	convert := func() {
		res, err := conv.Convert(ctx, buildInput(cfg, flags, path))
		if err != nil {
			fmt.Fprintf(env.Stderr, "%s: %v\n", path, err)
			return
		}
		fmt.Fprintf(env.Stdout, "%s -> %s\n", path, res.OutputPath)
	}

	convert()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitGeneral
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors replace files on
	// save, which would drop a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitGeneral
	}

	target := filepath.Clean(path)
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return exitSuccess
		case event, ok := <-watcher.Events:
			if !ok {
				return exitSuccess
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			convert()
		case err, ok := <-watcher.Errors:
			if !ok {
				return exitSuccess
			}
			fmt.Fprintf(env.Stderr, "watch: %v\n", err)
		}
	}
}
