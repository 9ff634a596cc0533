package nbtex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "well formed",
			input: "preamble\n\\begin{document}\nbody text\n\\end{document}\n",
			want:  "\nbody text\n",
		},
		{
			name:    "missing begin",
			input:   "body\\end{document}",
			wantErr: true,
		},
		{
			name:    "missing end",
			input:   "\\begin{document}body",
			wantErr: true,
		},
		{
			name:    "inverted markers",
			input:   "\\end{document}x\\begin{document}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractBody(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrDocumentStructure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripGeneratedTitle(t *testing.T) {
	t.Parallel()

	body := "\n\\title{Auto}\n\\author{Auto}\n\\date{Auto}\n\\maketitle\n\\section{Introduction}\nx"
	got := stripGeneratedTitle(body)
	assert.NotContains(t, got, `\maketitle`)
	assert.Contains(t, got, `\section{Introduction}`)

	// A maketitle later in the body is not a prologue and stays.
	body = "\\section{A}\ntext\n\\maketitle\n"
	assert.Equal(t, body, stripGeneratedTitle(body))
}

func TestProcessAbstract(t *testing.T) {
	t.Parallel()

	body := "intro\n\\section{Abstract}\nThis paper studies things.\n\\section{Introduction}\nmore"
	meta := Metadata{Date: "2024", Keywords: "go, latex"}

	got := processAbstract(body, meta)

	assert.NotContains(t, got, `\section{Abstract}`)
	assert.Contains(t, got, `\begin{center}{\bfseries\large Abstract}\end{center}`)
	assert.Contains(t, got, "This paper studies things.")
	assert.Contains(t, got, `2024 \textbullet{} go, latex`)
	assert.Contains(t, got, `\section{Introduction}`)

	// No abstract section: unchanged.
	plain := "\\section{Introduction}\nx"
	assert.Equal(t, plain, processAbstract(plain, meta))
}

func TestProcessAbstract_NoMetadataLineWhenEmpty(t *testing.T) {
	t.Parallel()

	body := "\\section{Abstract}\ncontent"
	got := processAbstract(body, Metadata{})
	assert.NotContains(t, got, `\small`)
}

func TestForceIntroBreak(t *testing.T) {
	t.Parallel()

	t.Run("inserted when absent", func(t *testing.T) {
		t.Parallel()
		body := "abstract text\n\\section{Introduction}\nx"
		got := forceIntroBreak(body)
		assert.Contains(t, got, "\\clearpage\n\\section{Introduction}")
	})

	t.Run("not duplicated", func(t *testing.T) {
		t.Parallel()
		body := "abstract\n\\newpage\n\\section{Introduction}\nx"
		assert.Equal(t, body, forceIntroBreak(body))
	})

	t.Run("no introduction section", func(t *testing.T) {
		t.Parallel()
		body := "\\section{Background}\nx"
		assert.Equal(t, body, forceIntroBreak(body))
	})
}

func TestNormalizeMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "simple display math becomes numbered equation",
			input:        "$$ x = 1 $$",
			wantContains: []string{`\begin{equation} x = 1 \end{equation}`},
			wantNot:      []string{"$$"},
		},
		{
			name:         "bracket display math",
			input:        `\[ y = 2 \]`,
			wantContains: []string{`\begin{equation} y = 2 \end{equation}`},
		},
		{
			name:  "alignment plus row break wraps aligned",
			input: `$$a&=b\\c&=d$$`,
			wantContains: []string{
				`\begin{equation}\begin{aligned}a&=b\\c&=d\end{aligned}\end{equation}`,
			},
		},
		{
			name:         "row break without alignment stays plain",
			input:        `$$a=b\\c=d$$`,
			wantContains: []string{`\begin{equation}a=b\\c=d\end{equation}`},
			wantNot:      []string{"aligned"},
		},
		{
			name:         "existing inner environment kept",
			input:        `$$\begin{aligned}a&=b\\c&=d\end{aligned}$$`,
			wantContains: []string{`\begin{equation}\begin{aligned}a&=b\\c&=d\end{aligned}\end{equation}`},
		},
		{
			name:         "array environment not wrapped in aligned",
			input:        `$$\begin{array}{cc}a&b\\c&d\end{array}$$`,
			wantContains: []string{`\begin{equation}\begin{array}{cc}`},
			wantNot:      []string{"aligned"},
		},
		{
			name:         "tagged span untouched",
			input:        `$$ x = 1 \tag{5} $$`,
			wantContains: []string{`$$ x = 1 \tag{5} $$`},
		},
		{
			name:         "starred equation numbered",
			input:        `\begin{equation*}e=mc^2\end{equation*}`,
			wantContains: []string{`\begin{equation}e=mc^2\end{equation}`},
		},
		{
			name:         "starred align wrapped aligned",
			input:        `\begin{align*}a&=b\\c&=d\end{align*}`,
			wantContains: []string{`\begin{equation}\begin{aligned}a&=b\\c&=d\end{aligned}\end{equation}`},
		},
		{
			name:         "starred gather wrapped gathered",
			input:        `\begin{gather*}a=b\\c=d\end{gather*}`,
			wantContains: []string{`\begin{equation}\begin{gathered}a=b\\c=d\end{gathered}\end{equation}`},
		},
		{
			name:         "starred align with tag untouched",
			input:        `\begin{align*}a&=b\tag{3}\end{align*}`,
			wantContains: []string{`\begin{align*}a&=b\tag{3}\end{align*}`},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeMath(tt.input)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
			for _, not := range tt.wantNot {
				assert.NotContains(t, got, not)
			}
		})
	}
}

func TestResolveFootnotes(t *testing.T) {
	t.Parallel()

	t.Run("definition after marker", func(t *testing.T) {
		t.Parallel()
		body := "claim[^1] more text\n[^1]: supporting note\nend"
		got := resolveFootnotes(body)
		assert.Contains(t, got, `claim\footnote{supporting note} more text`)
		assert.NotContains(t, got, "[^1]:")
	})

	t.Run("definition before marker", func(t *testing.T) {
		t.Parallel()
		body := "[^a]: early definition\nclaim[^a] end"
		got := resolveFootnotes(body)
		assert.Contains(t, got, `claim\footnote{early definition} end`)
	})

	t.Run("unmatched marker stays literal", func(t *testing.T) {
		t.Parallel()
		body := "claim[^missing] here\n[^other]: def"
		got := resolveFootnotes(body)
		assert.Contains(t, got, "[^missing]")
	})

	t.Run("definition text escaped", func(t *testing.T) {
		t.Parallel()
		body := "x[^1]\n[^1]: 50% of cases"
		got := resolveFootnotes(body)
		assert.Contains(t, got, `\footnote{50\% of cases}`)
	})
}

func TestRelocateAppendices(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		`\section{Intro}`, "intro text",
		`\section{Conclusion}`, "conclusion text",
		`\section{Appendix A}`, "appendix text",
		`\section{Results}`, "results text",
	}, "\n")

	got := relocateAppendices(body, t.TempDir(), "paper")

	// Appendix rewritten unnumbered with TOC entry, placed after Conclusion
	// and before Results.
	assert.Contains(t, got, `\section*{Appendix A}`)
	assert.Contains(t, got, `\addcontentsline{toc}{section}{Appendix A}`)
	assert.NotContains(t, got, "\\section{Appendix A}")

	conclusion := strings.Index(got, `\section{Conclusion}`)
	appendix := strings.Index(got, `\section*{Appendix A}`)
	results := strings.Index(got, `\section{Results}`)
	require.True(t, conclusion >= 0 && appendix >= 0 && results >= 0)
	assert.Less(t, conclusion, appendix)
	assert.Less(t, appendix, results)
}

func TestRelocateAppendices_NoConclusionAppendsAtEnd(t *testing.T) {
	t.Parallel()

	body := "\\section{Appendix B}\nappendix\n\\section{Intro}\nintro"
	got := relocateAppendices(body, t.TempDir(), "paper")

	intro := strings.Index(got, `\section{Intro}`)
	appendix := strings.Index(got, `\section*{Appendix B}`)
	require.True(t, intro >= 0 && appendix >= 0)
	assert.Less(t, intro, appendix)
}

func TestRelocateAppendices_BibliographyTail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "references.bib"), []byte("@misc{x}"), 0o600))

	body := "\\section{Conclusion}\ndone\n\\section{Later}\nmore"
	got := relocateAppendices(body, dir, "paper")

	assert.Contains(t, got, `\bibliographystyle{unsrt}`)
	assert.Contains(t, got, `\bibliography{references}`)

	bib := strings.Index(got, `\bibliography{references}`)
	later := strings.Index(got, `\section{Later}`)
	assert.Less(t, bib, later)
}

func TestProcessBody_EndToEnd(t *testing.T) {
	t.Parallel()

	output := strings.Join([]string{
		`\documentclass{article}`,
		`\begin{document}`,
		`\title{Auto}`,
		`\maketitle`,
		`\section{Abstract}`,
		"We study conversion.",
		`\section{Introduction}`,
		"Some claim[^1] and math $$ x = 1 $$",
		"[^1]: the note",
		`\section{Conclusion}`,
		"Done.",
		`\section{Appendix A}`,
		"Extra material.",
		`\end{document}`,
	}, "\n")

	meta := Metadata{Date: "2024", Keywords: "kw"}
	got, err := ProcessBody(output, meta, t.TempDir(), "paper")
	require.NoError(t, err)

	assert.NotContains(t, got, `\maketitle`)
	assert.Contains(t, got, `\begin{center}{\bfseries\large Abstract}\end{center}`)
	assert.Contains(t, got, "\\clearpage\n\\section{Introduction}")
	assert.Contains(t, got, `\begin{equation} x = 1 \end{equation}`)
	assert.Contains(t, got, `\footnote{the note}`)
	assert.Contains(t, got, `\section*{Appendix A}`)
	assert.NotContains(t, got, `\begin{document}`)
	assert.NotContains(t, got, `\end{document}`)
}
