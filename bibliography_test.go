package nbtex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBib(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("@misc{x}"), 0o600))
}

func TestFindBibliography(t *testing.T) {
	t.Parallel()

	t.Run("stem match preferred", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeBib(t, dir, "paper.bib")
		writeBib(t, dir, "references.bib")

		name, ok := FindBibliography(dir, "paper")
		require.True(t, ok)
		assert.Equal(t, "paper.bib", name)
	})

	t.Run("references fallback", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeBib(t, dir, "references.bib")

		name, ok := FindBibliography(dir, "paper")
		require.True(t, ok)
		assert.Equal(t, "references.bib", name)
	})

	t.Run("first bib by lexical order", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeBib(t, dir, "zeta.bib")
		writeBib(t, dir, "alpha.bib")

		name, ok := FindBibliography(dir, "paper")
		require.True(t, ok)
		assert.Equal(t, "alpha.bib", name)
	})

	t.Run("none found", func(t *testing.T) {
		t.Parallel()
		_, ok := FindBibliography(t.TempDir(), "paper")
		assert.False(t, ok)
	})
}
