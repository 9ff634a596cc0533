package nbtex

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Precompiled patterns for the metadata grammar.
var (
	metaKeyLine  = regexp.MustCompile(`^\s*([A-Za-z]+)\s*:\s*(.*)$`)
	metaListItem = regexp.MustCompile(`^\s*-\s+(.*)$`)

	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	parenthetical   = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)
	danglingSymbols = regexp.MustCompile(`\s*<\s*>|\(\s*\)`)
)

// Recognized metadata keys, grouped by how their values are handled.
var (
	metaScalarKeys = map[string]bool{
		"title": true, "subtitle": true, "date": true, "keywords": true,
		"degree": true, "id": true, "submission": true, "institution": true,
	}
	metaListKeys = map[string]bool{
		"author": true, "authors": true, "supervisor": true, "supervisors": true,
	}
	metaBlockKeys = map[string]bool{
		"disclaimer": true, "abstract": true, "declaration": true,
		"acknowledgements": true,
	}
)

// metadataScanner accumulates state across the line scan of the first
// descriptive cell: an open multi-line free-text block and an open
// author/supervisor list.
type metadataScanner struct {
	meta       Metadata
	blockKey   string
	blockLines []string
	listKey    string
}

// ExtractMetadata parses the first descriptive cell of doc into a Metadata
// record. With no descriptive cell it returns defaults and ConsumedCell -1;
// the caller must not blank a cell in that case.
func ExtractMetadata(doc *Document) Metadata {
	s := &metadataScanner{meta: Metadata{ConsumedCell: -1}}

	idx := doc.firstDescriptiveCell()
	if idx < 0 {
		s.finish("")
		return s.meta
	}

	s.meta.ConsumedCell = idx
	cellText := doc.Cells[idx].Text
	for _, line := range strings.Split(cellText, "\n") {
		s.scanLine(line)
	}
	s.finish(cellText)
	return s.meta
}

func (s *metadataScanner) scanLine(line string) {
	if m := metaKeyLine.FindStringSubmatch(line); m != nil {
		key := strings.ToLower(m[1])
		value := strings.TrimSpace(m[2])

		switch {
		case metaScalarKeys[key]:
			s.flushBlock()
			s.listKey = ""
			s.setScalar(key, value)
			return
		case metaListKeys[key]:
			s.flushBlock()
			s.listKey = key
			if value != "" {
				s.appendPerson(key, value)
			}
			return
		case metaBlockKeys[key]:
			s.flushBlock()
			s.listKey = ""
			s.blockKey = key
			if value != "" {
				s.blockLines = append(s.blockLines, value)
			}
			return
		}
		// Unrecognized key: fall through and treat as an ordinary line.
	}

	if s.blockKey != "" {
		s.blockLines = append(s.blockLines, line)
		return
	}

	if s.listKey != "" {
		if m := metaListItem.FindStringSubmatch(line); m != nil {
			s.appendPerson(s.listKey, m[1])
			return
		}
		if strings.TrimSpace(line) != "" {
			s.listKey = ""
		}
	}
}

// finish flushes any unterminated accumulation and applies defaults and the
// heading fallback for title/subtitle.
func (s *metadataScanner) finish(cellText string) {
	s.flushBlock()

	if s.meta.Title == "" || s.meta.Subtitle == "" {
		h1, h2 := headingFallback(cellText)
		if s.meta.Title == "" {
			s.meta.Title = h1
		}
		if s.meta.Subtitle == "" {
			s.meta.Subtitle = h2
		}
	}

	if s.meta.Date == "" {
		s.meta.Date = DatePlaceholder
	}
	if len(s.meta.Authors) == 0 {
		s.meta.Authors = []Person{{}}
	}
}

func (s *metadataScanner) setScalar(key, value string) {
	switch key {
	case "title":
		if s.meta.Title == "" {
			s.meta.Title = value
		}
	case "subtitle":
		if s.meta.Subtitle == "" {
			s.meta.Subtitle = value
		}
	case "date":
		if value == "" {
			s.meta.Date = DatePlaceholder
		} else {
			s.meta.Date = value
		}
	case "keywords":
		s.meta.Keywords = value
	case "degree":
		s.meta.Degree = value
	case "id":
		s.meta.ID = value
	case "submission":
		s.meta.Submission = value
	case "institution":
		s.meta.Institution = value
	}
}

func (s *metadataScanner) appendPerson(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	p := ParsePerson(value)
	if strings.HasPrefix(key, "supervisor") {
		s.meta.Supervisors = append(s.meta.Supervisors, p)
	} else {
		s.meta.Authors = append(s.meta.Authors, p)
	}
}

func (s *metadataScanner) flushBlock() {
	if s.blockKey == "" {
		return
	}
	value := strings.TrimSpace(strings.Join(s.blockLines, "\n"))
	switch s.blockKey {
	case "disclaimer":
		s.meta.Disclaimer = value
	case "abstract":
		s.meta.Abstract = value
	case "declaration":
		s.meta.Declaration = value
	case "acknowledgements":
		s.meta.Acknowledgements = value
	}
	s.blockKey = ""
	s.blockLines = nil
}

// ParsePerson parses one author/supervisor entry. The email is extracted by
// pattern match and removed before structural parsing, which tries
// pipe-delimited, parenthetical, then comma-delimited notation.
func ParsePerson(s string) Person {
	var p Person

	if email := emailPattern.FindString(s); email != "" {
		p.Email = email
		s = strings.Replace(s, email, "", 1)
		s = danglingSymbols.ReplaceAllString(s, "")
	}

	switch {
	case strings.Contains(s, "|"):
		parts := strings.SplitN(s, "|", 2)
		p.Name = strings.TrimSpace(parts[0])
		p.Affiliation = strings.TrimSpace(parts[1])
	case parenthetical.MatchString(s):
		m := parenthetical.FindStringSubmatch(s)
		p.Name = strings.TrimSpace(m[1])
		p.Affiliation = strings.TrimSpace(m[2])
	case strings.Contains(s, ","):
		parts := strings.SplitN(s, ",", 2)
		p.Name = strings.TrimSpace(parts[0])
		p.Affiliation = strings.TrimSpace(parts[1])
	default:
		p.Name = strings.TrimSpace(s)
	}

	return p
}

// headingFallback finds the first level-1 and level-2 markdown headings in
// the cell, used when no explicit title/subtitle keys are present.
func headingFallback(cellText string) (h1, h2 string) {
	if cellText == "" {
		return "", ""
	}

	src := []byte(cellText)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch heading.Level {
		case 1:
			if h1 == "" {
				h1 = headingText(heading, src)
			}
		case 2:
			if h2 == "" {
				h2 = headingText(heading, src)
			}
		}
		return ast.WalkSkipChildren, nil
	})

	return h1, h2
}

func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
	}
	return strings.TrimSpace(b.String())
}
