// Package nbtex converts cell-based notebook documents into complete LaTeX
// documents.
//
// The pipeline extracts a metadata block from the first markdown cell,
// rewrites inline directives (tables, figures, code tables, math tables,
// cross-references) into LaTeX constructs, hands the modified notebook to an
// external nbconvert subprocess for cell rendering, post-processes the
// returned LaTeX body (abstract placement, forced section breaks, numbered
// math environments, footnote resolution, appendix relocation, bibliography
// insertion), and assembles the final document with a fixed preamble and a
// generated title block.
//
// Basic usage:
//
//	conv := nbtex.NewConverter()
//	res, err := conv.Convert(ctx, nbtex.Input{NotebookPath: "paper.ipynb"})
//
// The engine performs no network I/O and holds no state across conversions;
// concurrent Convert calls are safe as long as input paths differ.
package nbtex
