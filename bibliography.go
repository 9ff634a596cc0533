package nbtex

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/s47195385/nbtex/internal/fileutil"
)

// FindBibliography discovers the bibliography source for a conversion: it
// checks <stem>.bib and references.bib in the root directory, then falls
// back to the first .bib file present in lexical order. The returned name is
// relative to rootDir.
func FindBibliography(rootDir, stem string) (string, bool) {
	for _, candidate := range []string{stem + ".bib", "references.bib"} {
		if fileutil.FileExists(filepath.Join(rootDir, candidate)) {
			return candidate, true
		}
	}

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return "", false
	}
	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".bib") {
			return entry.Name(), true
		}
	}

	return "", false
}
