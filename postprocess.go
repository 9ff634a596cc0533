package nbtex

import (
	"fmt"
	"regexp"
	"strings"
)

// Document body markers emitted by the external conversion utility.
const (
	beginDocument = `\begin{document}`
	endDocument   = `\end{document}`
)

// Precompiled patterns for body post-processing.
var (
	generatedTitle = regexp.MustCompile(`^(?:\s*\\(?:title|author|date)\{[^\n]*\}|\s*\\maketitle)+\s*`)

	sectionMarker = regexp.MustCompile(`(?m)^\\section\*?\{([^}]*)\}`)

	displayMath = regexp.MustCompile(`(?s)\$\$(.*?)\$\$|\\\[(.*?)\\\]`)

	starredEquation = regexp.MustCompile(`(?s)\\begin\{equation\*\}(.*?)\\end\{equation\*\}`)
	starredAlign    = regexp.MustCompile(`(?s)\\begin\{align\*\}(.*?)\\end\{align\*\}`)
	starredGather   = regexp.MustCompile(`(?s)\\begin\{gather\*\}(.*?)\\end\{gather\*\}`)

	mathEnvironment = regexp.MustCompile(`\\begin\{(?:align|aligned|alignat|gather|gathered|split|array|cases|matrix|pmatrix|bmatrix)`)

	footnoteDef    = regexp.MustCompile(`(?m)^\[\^([^\]\s]+)\]:[ \t]*(.*)$`)
	footnoteMarker = regexp.MustCompile(`\[\^([^\]\s]+)\]`)

	pageBreakCommand = regexp.MustCompile(`\\(?:clearpage|newpage|pagebreak)`)
)

// introBreakLookback is how far (in bytes) before the Introduction heading an
// existing page-break command suppresses the forced one.
const introBreakLookback = 200

// sectionSpan delimits one structural section inside a body of text:
// start is the heading's offset, contentStart follows the heading, end is
// the next section marker or the end of text.
type sectionSpan struct {
	title        string
	start        int
	contentStart int
	end          int
}

// findSections locates every section-start marker in body.
func findSections(body string) []sectionSpan {
	matches := sectionMarker.FindAllStringSubmatchIndex(body, -1)
	spans := make([]sectionSpan, len(matches))
	for i, m := range matches {
		spans[i] = sectionSpan{
			title:        body[m[2]:m[3]],
			start:        m[0],
			contentStart: m[1],
			end:          len(body),
		}
		if i > 0 {
			spans[i-1].end = m[0]
		}
	}
	return spans
}

// ProcessBody runs every post-processing pass over the document body text
// returned by the external conversion utility and returns the processed
// inner body (between the document markers).
func ProcessBody(output string, meta Metadata, rootDir, stem string) (string, error) {
	body, err := extractBody(output)
	if err != nil {
		return "", err
	}

	body = stripGeneratedTitle(body)
	body = processAbstract(body, meta)
	body = forceIntroBreak(body)
	body = normalizeMath(body)
	body = resolveFootnotes(body)
	body = relocateAppendices(body, rootDir, stem)

	return body, nil
}

// extractBody returns the text between the begin/end document markers.
// A missing or inverted boundary pair is a fatal structural error.
func extractBody(output string) (string, error) {
	begin := strings.Index(output, beginDocument)
	end := strings.LastIndex(output, endDocument)
	if begin < 0 || end < 0 {
		return "", fmt.Errorf("%w: missing document markers", ErrDocumentStructure)
	}
	contentStart := begin + len(beginDocument)
	if end < contentStart {
		return "", fmt.Errorf("%w: inverted document markers", ErrDocumentStructure)
	}
	return output[contentStart:end], nil
}

// stripGeneratedTitle removes an auto-generated title/author/date/maketitle
// prologue if present immediately at the body's start.
func stripGeneratedTitle(body string) string {
	trimmed := strings.TrimLeft(body, "\n")
	if loc := generatedTitle.FindStringIndex(trimmed); loc != nil && loc[0] == 0 {
		return trimmed[loc[1]:]
	}
	return body
}

// processAbstract re-wraps the Abstract section as a centered unnumbered
// heading followed by its content and a compact date/keywords line. A body
// without an Abstract section is returned unchanged.
func processAbstract(body string, meta Metadata) string {
	for _, span := range findSections(body) {
		if !strings.EqualFold(strings.TrimSpace(span.title), "Abstract") {
			continue
		}

		content := strings.TrimSpace(body[span.contentStart:span.end])

		var b strings.Builder
		b.WriteString("\\begin{center}{\\bfseries\\large Abstract}\\end{center}\n")
		b.WriteString(content)
		b.WriteString("\n")
		if meta.Date != "" || meta.Keywords != "" {
			b.WriteString(`\begin{center}\small `)
			b.WriteString(meta.Date)
			if meta.Keywords != "" {
				if meta.Date != "" {
					b.WriteString(` \textbullet{} `)
				}
				b.WriteString(EscapeLaTeX(meta.Keywords))
			}
			b.WriteString("\\end{center}\n")
		}

		return body[:span.start] + b.String() + body[span.end:]
	}
	return body
}

// forceIntroBreak inserts a page break before the Introduction section
// unless one already appears within a short lookback window.
func forceIntroBreak(body string) string {
	for _, span := range findSections(body) {
		if !strings.EqualFold(strings.TrimSpace(span.title), "Introduction") {
			continue
		}

		windowStart := span.start - introBreakLookback
		if windowStart < 0 {
			windowStart = 0
		}
		if pageBreakCommand.MatchString(body[windowStart:span.start]) {
			return body
		}
		return body[:span.start] + "\\clearpage\n" + body[span.start:]
	}
	return body
}

// normalizeMath wraps bare display-math spans in numbered equation
// environments and rewrites starred environments to numbered counterparts.
//
// The aligned-vs-plain choice is a heuristic over raw text (a row-break
// marker plus an alignment marker means multi-row alignment); it is kept
// as-is for compatibility with existing documents.
func normalizeMath(body string) string {
	body = displayMath.ReplaceAllStringFunc(body, func(match string) string {
		m := displayMath.FindStringSubmatch(match)
		inner := m[1]
		if inner == "" {
			inner = m[2]
		}
		if hasTagDirective(inner) {
			return match
		}
		return wrapDisplayMath(inner)
	})

	body = starredEquation.ReplaceAllStringFunc(body, func(match string) string {
		inner := starredEquation.FindStringSubmatch(match)[1]
		if hasTagDirective(inner) {
			return match
		}
		return `\begin{equation}` + inner + `\end{equation}`
	})

	body = starredAlign.ReplaceAllStringFunc(body, func(match string) string {
		inner := starredAlign.FindStringSubmatch(match)[1]
		if hasTagDirective(inner) {
			return match
		}
		return "\\begin{equation}\\begin{aligned}" + inner + "\\end{aligned}\\end{equation}"
	})

	body = starredGather.ReplaceAllStringFunc(body, func(match string) string {
		inner := starredGather.FindStringSubmatch(match)[1]
		if hasTagDirective(inner) {
			return match
		}
		return "\\begin{equation}\\begin{gathered}" + inner + "\\end{gathered}\\end{equation}"
	})

	return body
}

func wrapDisplayMath(inner string) string {
	// Named multi-line math environments and arrays keep their own inner
	// structure; only the outer numbered wrap is applied.
	if mathEnvironment.MatchString(inner) {
		return `\begin{equation}` + inner + `\end{equation}`
	}

	if strings.Contains(inner, `\\`) && strings.Contains(inner, "&") {
		return "\\begin{equation}\\begin{aligned}" + inner + "\\end{aligned}\\end{equation}"
	}

	return `\begin{equation}` + inner + `\end{equation}`
}

func hasTagDirective(inner string) bool {
	return strings.Contains(inner, `\tag`) ||
		strings.Contains(inner, `\notag`) ||
		strings.Contains(inner, `\nonumber`)
}

// resolveFootnotes runs the two-pass footnote resolution: the first pass
// collects every definition (wherever it appears) and removes the definition
// lines; the second pass replaces markers with inline footnote commands.
// Two passes are required so forward references resolve. Markers without a
// definition stay literal.
func resolveFootnotes(body string) string {
	defs := map[string]string{}
	for _, m := range footnoteDef.FindAllStringSubmatch(body, -1) {
		defs[m[1]] = strings.TrimSpace(m[2])
	}
	if len(defs) == 0 {
		return body
	}

	body = footnoteDef.ReplaceAllString(body, "")

	return footnoteMarker.ReplaceAllStringFunc(body, func(match string) string {
		id := footnoteMarker.FindStringSubmatch(match)[1]
		def, ok := defs[id]
		if !ok {
			return match
		}
		return `\footnote{` + EscapeLaTeX(def) + `}`
	})
}

// relocateAppendices extracts sections titled "Appendix..." in document
// order, rewrites them to unnumbered headings with an explicit
// table-of-contents entry, and re-inserts them (followed by a bibliography
// block when a bibliography source exists) immediately after the Conclusion
// section, or at the very end of the body when there is none.
func relocateAppendices(body, rootDir, stem string) string {
	var deferred strings.Builder
	kept := body

	for {
		moved := false
		for _, span := range findSections(kept) {
			title := strings.TrimSpace(span.title)
			if !hasAppendixPrefix(title) {
				continue
			}
			deferred.WriteString("\\section*{" + title + "}\n")
			deferred.WriteString("\\addcontentsline{toc}{section}{" + title + "}\n")
			deferred.WriteString(strings.TrimSpace(kept[span.contentStart:span.end]))
			deferred.WriteString("\n")
			kept = kept[:span.start] + kept[span.end:]
			moved = true
			break
		}
		if !moved {
			break
		}
	}

	tail := deferred.String()
	if bib, ok := FindBibliography(rootDir, stem); ok {
		tail += "\\bibliographystyle{unsrt}\n\\bibliography{" + strings.TrimSuffix(bib, ".bib") + "}\n"
	}
	if tail == "" {
		return body
	}

	for _, span := range findSections(kept) {
		if strings.EqualFold(strings.TrimSpace(span.title), "Conclusion") {
			return kept[:span.end] + "\n" + tail + kept[span.end:]
		}
	}
	return kept + "\n" + tail
}

func hasAppendixPrefix(title string) bool {
	return len(title) >= len("appendix") &&
		strings.EqualFold(title[:len("appendix")], "appendix")
}
