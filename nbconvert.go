package nbtex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// Invocation describes one candidate way of starting the external conversion
// utility. Candidates are tried in order; the first one that can be started
// short-circuits the rest.
type Invocation struct {
	Name string
	Args []string
}

// DefaultCandidates returns the ordered invocation candidates for the
// notebook conversion utility.
func DefaultCandidates() []Invocation {
	return []Invocation{
		{Name: "jupyter", Args: []string{"nbconvert"}},
		{Name: "python3", Args: []string{"-m", "nbconvert"}},
	}
}

// convertArgs builds the argument list selecting "convert to typeset
// document" mode with an output-basename argument and the modified temporary
// document path.
func convertArgs(inv Invocation, outputBase, notebookPath string) []string {
	args := append([]string{}, inv.Args...)
	return append(args, "--to", "latex", "--output", outputBase, notebookPath)
}

// runConversion invokes the external utility, trying each candidate in
// order. A candidate that cannot be started moves to the next; a candidate
// that starts but exits non-zero is terminal for this conversion.
func runConversion(ctx context.Context, runner CommandRunner, candidates []Invocation, outputBase, notebookPath string) error {
	if len(candidates) == 0 {
		return ErrToolUnavailable
	}

	for _, inv := range candidates {
		_, stderr, err := runner.Run(ctx, inv.Name, convertArgs(inv, outputBase, notebookPath)...)
		if err == nil {
			return nil
		}
		if isNotInvocable(err) {
			continue
		}
		return fmt.Errorf("%w: %s: %s", ErrToolFailed, inv.Name, diagnostic(stderr, err))
	}

	return ErrToolUnavailable
}

// Available probes whether the external conversion utility can be invoked at
// all, so callers can short-circuit before attempting a batch.
func Available(ctx context.Context, runner CommandRunner, candidates []Invocation) bool {
	for _, inv := range candidates {
		args := append(append([]string{}, inv.Args...), "--version")
		if _, _, err := runner.Run(ctx, inv.Name, args...); err == nil {
			return true
		}
	}
	return false
}

// isNotInvocable distinguishes "could not be started" (try the next
// candidate) from "ran and failed" (terminal).
func isNotInvocable(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return true
	}
	var exitErr *exec.ExitError
	return !errors.As(err, &exitErr) && errors.Is(err, exec.ErrNotFound)
}

func diagnostic(stderr string, err error) string {
	if stderr != "" {
		return stderr
	}
	return err.Error()
}
