package nbtex

import "errors"

// Sentinel errors for conversion failures. Every fatal condition aborts only
// the single document being converted; batch drivers catch and continue.
var (
	// ErrNotebookUnreadable reports a missing input file or unparsable
	// notebook JSON.
	ErrNotebookUnreadable = errors.New("notebook unreadable")

	// ErrToolUnavailable reports that no candidate invocation of the
	// external conversion utility could be started.
	ErrToolUnavailable = errors.New("external conversion tool unavailable")

	// ErrToolFailed reports that the external conversion utility ran but
	// exited non-zero or produced no output file.
	ErrToolFailed = errors.New("external conversion tool failed")

	// ErrDocumentStructure reports absent or inverted begin/end document
	// markers in the utility's output, usually a tool/version mismatch.
	ErrDocumentStructure = errors.New("document structure invalid")

	// ErrEmptyInput reports a conversion request without a notebook path.
	ErrEmptyInput = errors.New("notebook path cannot be empty")
)
