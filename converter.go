package nbtex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/s47195385/nbtex/internal/fileutil"
)

// Compile-time interface implementation check.
var _ CommandRunner = (*ExecRunner)(nil)

// Converter orchestrates the notebook-to-LaTeX conversion pipeline. It is
// stateless across conversions; concurrent Convert calls are safe because
// all per-call paths derive from the input notebook's path.
type Converter struct {
	runner     CommandRunner
	candidates []Invocation
	logger     *slog.Logger
	keepTemp   bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithRunner replaces the subprocess runner (used by tests).
func WithRunner(r CommandRunner) Option {
	return func(c *Converter) { c.runner = r }
}

// WithCandidates replaces the ordered external-tool invocation candidates.
func WithCandidates(candidates []Invocation) Option {
	return func(c *Converter) { c.candidates = candidates }
}

// WithLogger sets the logger for cleanup warnings and progress.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithKeepTemp retains intermediate artifacts for debugging.
func WithKeepTemp(keep bool) Option {
	return func(c *Converter) { c.keepTemp = keep }
}

// NewConverter creates a Converter with default configuration.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		runner:     &ExecRunner{},
		candidates: DefaultCandidates(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the external conversion utility can be invoked
// at all, so batch callers can short-circuit early.
func (c *Converter) Available(ctx context.Context) bool {
	return Available(ctx, c.runner, c.candidates)
}

// Convert runs the full pipeline for one notebook: metadata extraction,
// directive rewriting, external conversion, body post-processing, and final
// assembly. Temporary artifacts are removed on every exit path unless
// keep-temp is set; removal failures are logged, never fatal.
func (c *Converter) Convert(ctx context.Context, input Input) (*Result, error) {
	if input.NotebookPath == "" {
		return nil, ErrEmptyInput
	}
	if input.OutputPath == "" {
		input.OutputPath = fileutil.ReplaceExt(input.NotebookPath, ".tex")
	}
	if input.RootDir == "" {
		input.RootDir = filepath.Dir(input.NotebookPath)
	}

	doc, err := ReadDocument(input.NotebookPath)
	if err != nil {
		return nil, err
	}

	meta := ExtractMetadata(doc)

	// Blank the consumed cell so the metadata block is not duplicated in
	// the rendered body. Only the first descriptive cell may be cleared.
	if meta.ConsumedCell >= 0 {
		doc.Cells[meta.ConsumedCell].SetText("")
	}

	for i := range doc.Cells {
		if doc.Cells[i].IsDescriptive() {
			doc.Cells[i].SetText(RewriteDirectives(doc.Cells[i].Text, input.RootDir))
		}
	}

	// Temp paths derive from the input path so concurrent conversions of
	// different notebooks never collide.
	stem := fileutil.Stem(input.NotebookPath)
	tmpBase := stem + "_nbtex"
	tmpDir := filepath.Dir(input.NotebookPath)
	tmpNotebook := filepath.Join(tmpDir, tmpBase+".ipynb")
	tmpTeX := filepath.Join(tmpDir, tmpBase+".tex")

	defer c.cleanup(tmpNotebook, tmpTeX, filepath.Join(tmpDir, tmpBase+"_files"))

	if err := doc.Write(tmpNotebook); err != nil {
		return nil, fmt.Errorf("writing temporary notebook: %w", err)
	}

	if err := runConversion(ctx, c.runner, c.candidates, tmpBase, tmpNotebook); err != nil {
		return nil, err
	}

	rendered, err := os.ReadFile(tmpTeX) // #nosec G304 -- derived from input path
	if err != nil {
		return nil, fmt.Errorf("%w: expected output %s missing: %v", ErrToolFailed, tmpTeX, err)
	}

	body, err := ProcessBody(string(rendered), meta, input.RootDir, stem)
	if err != nil {
		return nil, err
	}

	final := AssembleDocument(meta, body)
	if err := os.WriteFile(input.OutputPath, []byte(final), 0o600); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}

	c.logger.Info("converted notebook",
		slog.String("input", input.NotebookPath),
		slog.String("output", input.OutputPath))

	return &Result{OutputPath: input.OutputPath, Meta: meta}, nil
}

// cleanup removes intermediate artifacts. Best-effort: failures are logged
// as warnings and never abort the conversion.
func (c *Converter) cleanup(paths ...string) {
	if c.keepTemp {
		return
	}
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			c.logger.Warn("removing temporary artifact",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
}
