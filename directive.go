package nbtex

import (
	"regexp"
	"strings"
)

// directiveKind enumerates the recognized directive variants. Rendering
// dispatches over this type in one switch so a newly added kind cannot fall
// through silently.
type directiveKind int

const (
	directiveTable directiveKind = iota
	directiveFigure
	directiveCodeTable
	directiveMathTable
)

// directive is one parsed directive occurrence: its kind, an ordered
// attribute mapping with an optional #identifier, and the inner raw body
// (absent for bare forms that reference an external source file).
type directive struct {
	kind  directiveKind
	id    string
	attrs map[string]string
	order []string
	body  string
}

// Directive grammar patterns, in replacement priority order.
var (
	// Cross-reference markers: @fig:id and @tbl:id.
	crossRefPattern = regexp.MustCompile(`@(fig|tbl):([A-Za-z0-9_.:-]+)`)

	// Fenced directive block with attribute header and inner body.
	fencedDirective = regexp.MustCompile("(?ms)^```(table|figure|code-table|math-table)[ \t]+\\{([^}\n]*)\\}[ \t]*\n(.*?)^```[ \t]*$")

	// Bare single-line form carrying only the attribute header.
	bareDirective = regexp.MustCompile(`(?m)^!(table|figure|code-table|math-table)\{([^}\n]*)\}[ \t]*$`)

	// Attribute header tokens.
	attrIdent = regexp.MustCompile(`#([^\s}]+)`)
	attrPair  = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_-]*)=(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)'|([^\s"']+))`)
)

var directiveKinds = map[string]directiveKind{
	"table":      directiveTable,
	"figure":     directiveFigure,
	"code-table": directiveCodeTable,
	"math-table": directiveMathTable,
}

// RewriteDirectives replaces every recognized directive occurrence in
// descriptive-cell text with its LaTeX form, leaving unrelated text
// untouched. Each form is applied as a global pass over the whole text
// before the next form is attempted: cross-references, then fenced blocks,
// then bare forms. Re-running the rewriter on its own output is a no-op.
func RewriteDirectives(content, rootDir string) string {
	content = crossRefPattern.ReplaceAllString(content, `\ref{${1}:${2}}`)

	content = fencedDirective.ReplaceAllStringFunc(content, func(match string) string {
		m := fencedDirective.FindStringSubmatch(match)
		d := newDirective(directiveKinds[m[1]], m[2])
		d.body = strings.TrimRight(m[3], "\n")
		return renderDirective(d, rootDir)
	})

	content = bareDirective.ReplaceAllStringFunc(content, func(match string) string {
		m := bareDirective.FindStringSubmatch(match)
		d := newDirective(directiveKinds[m[1]], m[2])
		return renderDirective(d, rootDir)
	})

	return content
}

func newDirective(kind directiveKind, header string) directive {
	d := directive{kind: kind, attrs: map[string]string{}}
	d.id, d.attrs, d.order = parseAttrs(header)
	return d
}

// parseAttrs parses an attribute header: enclosing braces stripped, one
// optional #identifier token, then key=value pairs where values are quoted
// (single or double, with markdown punctuation escapes) or bare tokens.
// Malformed headers degrade to empty attribute sets rather than aborting.
func parseAttrs(header string) (id string, attrs map[string]string, order []string) {
	attrs = map[string]string{}

	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, "{")
	header = strings.TrimSuffix(header, "}")

	if m := attrIdent.FindStringSubmatch(header); m != nil {
		id = m[1]
		header = strings.Replace(header, m[0], "", 1)
	}

	for _, m := range attrPair.FindAllStringSubmatch(header, -1) {
		key := m[1]
		var value string
		switch {
		case m[2] != "":
			value = UnescapeMarkdown(m[2])
		case m[3] != "":
			value = UnescapeMarkdown(m[3])
		default:
			value = m[4]
		}
		if _, seen := attrs[key]; !seen {
			order = append(order, key)
		}
		attrs[key] = value
	}

	return id, attrs, order
}

// boolAttr reports whether an attribute is present and not explicitly off.
func (d directive) boolAttr(key string) bool {
	v, ok := d.attrs[key]
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "false", "no", "off", "0":
		return false
	}
	return true
}
