package nbtex

// DatePlaceholder is the default date when the metadata block omits one.
// It renders as the current year at LaTeX compile time.
const DatePlaceholder = `\the\year`

// Person is an author or supervisor entry parsed from the metadata block.
// Email and affiliation are optional.
type Person struct {
	Name        string
	Email       string
	Affiliation string
}

// Metadata is the document metadata extracted from the first descriptive
// cell. ConsumedCell is the index of that cell, or -1 when the notebook has
// no descriptive cell at all.
type Metadata struct {
	Title       string
	Subtitle    string
	Date        string
	Keywords    string
	Degree      string
	ID          string
	Submission  string
	Institution string

	Disclaimer       string
	Abstract         string
	Declaration      string
	Acknowledgements string

	Authors     []Person
	Supervisors []Person

	ConsumedCell int
}

// Input contains conversion parameters for a single notebook.
type Input struct {
	// NotebookPath is the input notebook file (required).
	NotebookPath string

	// OutputPath is the target .tex file. Empty means the notebook path
	// with its extension replaced by ".tex".
	OutputPath string

	// RootDir resolves relative source references inside directives and is
	// where bibliography files are discovered. Empty means the notebook's
	// containing directory.
	RootDir string
}

// Result describes a completed conversion.
type Result struct {
	OutputPath string
	Meta       Metadata
}
