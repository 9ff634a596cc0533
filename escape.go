package nbtex

import (
	"regexp"
	"strings"
)

// latexEscaper substitutes LaTeX special characters in prose. A Replacer
// scans the input once, so replacement output is never re-replaced.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// markdownEscape matches a backslash escape of markdown punctuation.
var markdownEscape = regexp.MustCompile("\\\\([\\\\`*_{}\\[\\]()#+.!|\"'<>-])")

// EscapeLaTeX escapes prose text for safe inclusion in a LaTeX document.
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// UnescapeMarkdown removes markdown punctuation escapes from quoted
// attribute values (`\"` becomes `"`, `\|` becomes `|`, and so on).
func UnescapeMarkdown(s string) string {
	return markdownEscape.ReplaceAllString(s, "$1")
}

// verbDelimiters are tried in order when rendering inline verbatim text.
var verbDelimiters = []rune{'|', '!', '@', '+', '^', '~', '#', '='}

// verbInline renders s through LaTeX's inline verbatim mechanism, picking a
// delimiter that does not occur in s. When every candidate collides it falls
// back to escaped teletype text.
func verbInline(s string) string {
	for _, d := range verbDelimiters {
		if !strings.ContainsRune(s, d) {
			return `\verb` + string(d) + s + string(d)
		}
	}
	return `\texttt{` + EscapeLaTeX(s) + `}`
}
