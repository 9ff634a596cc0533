package nbtex

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Cell kinds as they appear in notebook JSON.
const (
	cellMarkdown = "markdown"
	cellCode     = "code"
)

// Cell is one notebook cell. The raw field map preserves every original
// JSON field (outputs, execution counts, cell metadata) so the modified
// notebook round-trips losslessly through the external conversion tool.
type Cell struct {
	Type string
	Text string

	raw map[string]json.RawMessage
}

// IsDescriptive reports whether the cell holds prose/markup rather than
// executable content.
func (c *Cell) IsDescriptive() bool {
	return c.Type == cellMarkdown
}

// SetText replaces the cell's payload, keeping the raw representation in
// sync for serialization.
func (c *Cell) SetText(text string) {
	c.Text = text
	encoded, err := json.Marshal(text)
	if err != nil {
		// A Go string always marshals; keep the old source on the
		// impossible path rather than corrupting the cell.
		return
	}
	if c.raw == nil {
		c.raw = map[string]json.RawMessage{}
	}
	c.raw["source"] = encoded
}

// Document is an ordered sequence of notebook cells plus the untouched
// top-level notebook fields (nbformat version, notebook metadata).
type Document struct {
	Cells []Cell

	extra map[string]json.RawMessage
}

// ReadDocument parses a notebook file in its native JSON cell-sequence form.
// Unreadable files and malformed JSON wrap ErrNotebookUnreadable.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotebookUnreadable, err)
	}
	return ParseDocument(data)
}

// ParseDocument parses notebook JSON bytes into a Document.
func ParseDocument(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotebookUnreadable, err)
	}

	doc := &Document{extra: top}

	rawCells, ok := top["cells"]
	if !ok {
		return nil, fmt.Errorf("%w: no cells array", ErrNotebookUnreadable)
	}

	var cellMaps []map[string]json.RawMessage
	if err := json.Unmarshal(rawCells, &cellMaps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotebookUnreadable, err)
	}

	for _, m := range cellMaps {
		cell := Cell{raw: m}
		if rawType, ok := m["cell_type"]; ok {
			_ = json.Unmarshal(rawType, &cell.Type)
		}
		if rawSource, ok := m["source"]; ok {
			cell.Text = joinSource(rawSource)
		}
		doc.Cells = append(doc.Cells, cell)
	}

	return doc, nil
}

// Marshal serializes the document back to notebook JSON, preserving cell
// order and all fields the pipeline never touched.
func (d *Document) Marshal() ([]byte, error) {
	cellMaps := make([]map[string]json.RawMessage, len(d.Cells))
	for i := range d.Cells {
		cellMaps[i] = d.Cells[i].raw
	}

	rawCells, err := json.Marshal(cellMaps)
	if err != nil {
		return nil, fmt.Errorf("marshaling cells: %w", err)
	}

	top := make(map[string]json.RawMessage, len(d.extra))
	for k, v := range d.extra {
		top[k] = v
	}
	top["cells"] = rawCells

	return json.Marshal(top)
}

// Write serializes the document to a notebook file.
func (d *Document) Write(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// firstDescriptiveCell returns the index of the first markdown cell, or -1.
func (d *Document) firstDescriptiveCell() int {
	for i := range d.Cells {
		if d.Cells[i].IsDescriptive() {
			return i
		}
	}
	return -1
}

// joinSource flattens a notebook source field, which may be a single string
// or a sequence of lines, into one payload string.
func joinSource(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return ""
	}

	var b strings.Builder
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 && !strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
