package nbtex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		wantID    string
		wantAttrs map[string]string
	}{
		{
			name:      "identifier and quoted value",
			header:    `#tbl:x title="Demo"`,
			wantID:    "tbl:x",
			wantAttrs: map[string]string{"title": "Demo"},
		},
		{
			name:      "braces stripped",
			header:    `{#fig:y src="img.png" scale=0.5}`,
			wantID:    "fig:y",
			wantAttrs: map[string]string{"src": "img.png", "scale": "0.5"},
		},
		{
			name:      "single quotes and bare tokens",
			header:    `mode='raw' linenos=true`,
			wantID:    "",
			wantAttrs: map[string]string{"mode": "raw", "linenos": "true"},
		},
		{
			name:      "markdown escapes unescaped in quoted values",
			header:    `title="a \| b \*c\*"`,
			wantID:    "",
			wantAttrs: map[string]string{"title": "a | b *c*"},
		},
		{
			name:      "malformed degrades to empty set",
			header:    `== not an attribute ==`,
			wantID:    "",
			wantAttrs: map[string]string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, attrs, _ := parseAttrs(tt.header)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantAttrs, attrs)
		})
	}
}

func TestRewriteDirectives_CrossReferences(t *testing.T) {
	t.Parallel()

	got := RewriteDirectives("see @fig:arch and @tbl:results for details", "")
	assert.Equal(t, `see \ref{fig:arch} and \ref{tbl:results} for details`, got)
}

func TestRewriteDirectives_FencedTable(t *testing.T) {
	t.Parallel()

	input := "before\n" +
		"```table {#tbl:x title=\"Demo\"}\n" +
		"A|B\n" +
		"1|2\n" +
		"```\n" +
		"after"

	got := RewriteDirectives(input, "")

	assert.Contains(t, got, "before\n")
	assert.Contains(t, got, "\nafter")
	assert.Contains(t, got, `\caption{Demo}`)
	assert.Contains(t, got, `\label{tbl:x}`)
	assert.Contains(t, got, `\begin{tabular}{ll}`)
	assert.Contains(t, got, "A & B \\\\\n\\midrule\n1 & 2 \\\\")
}

func TestRewriteDirectives_BareForm(t *testing.T) {
	t.Parallel()

	got := RewriteDirectives(`!figure{#fig:arch src="arch.png"}`, "")
	assert.Contains(t, got, `\includegraphics[width=\linewidth]{arch.png}`)
	assert.Contains(t, got, `\label{fig:arch}`)
}

func TestRewriteDirectives_UnrelatedTextUntouched(t *testing.T) {
	t.Parallel()

	input := "Plain prose with a ``` code fence\n```python\nx = 1\n```\nand an email a@b.com"
	assert.Equal(t, input, RewriteDirectives(input, ""))
}

func TestRewriteDirectives_Idempotent(t *testing.T) {
	t.Parallel()

	input := "intro @tbl:x\n" +
		"```table {#tbl:x title=\"Demo\"}\n" +
		"A|B\n" +
		"1|2\n" +
		"```\n" +
		"!figure{#fig:y src=\"y.png\"}\n"

	once := RewriteDirectives(input, "")
	twice := RewriteDirectives(once, "")

	require.Equal(t, once, twice)
	assert.False(t, strings.Contains(once, "```table"))
	assert.False(t, strings.Contains(once, "!figure"))
	assert.False(t, strings.Contains(once, "@tbl:"))
}
