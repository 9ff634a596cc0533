package nbtex

import "strings"

// preamble is the fixed document preamble preceding the generated metadata
// commands.
const preamble = `\documentclass[11pt,a4paper]{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{graphicx}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{booktabs}
\usepackage{float}
\usepackage{geometry}
\usepackage{hyperref}
`

// BuildFrontmatter builds the centered title block: bolded title, optional
// subtitle, per-author blocks, and a supervisors block when any exist.
func BuildFrontmatter(meta Metadata) string {
	var b strings.Builder

	b.WriteString("\\begin{center}\n")
	b.WriteString(`{\LARGE\bfseries ` + EscapeLaTeX(meta.Title) + "}\\\\[0.8em]\n")
	if meta.Subtitle != "" {
		b.WriteString(`{\large ` + EscapeLaTeX(meta.Subtitle) + "}\\\\[1.2em]\n")
	}

	for i, author := range meta.Authors {
		if i > 0 {
			b.WriteString("\\vspace{0.8em}\n")
		}
		writePersonBlock(&b, author)
	}

	if len(meta.Supervisors) > 0 {
		b.WriteString("\\vspace{1.2em}\n")
		b.WriteString("{\\bfseries Supervisor(s)}\\\\\n")
		for i, sup := range meta.Supervisors {
			if i > 0 {
				b.WriteString("\\vspace{0.8em}\n")
			}
			writePersonBlock(&b, sup)
		}
	}

	b.WriteString("\\end{center}\n")
	return b.String()
}

func writePersonBlock(b *strings.Builder, p Person) {
	if p.Name != "" {
		b.WriteString(`{\large ` + EscapeLaTeX(p.Name) + "}\\\\\n")
	}
	if p.Email != "" {
		b.WriteString(`\href{mailto:` + p.Email + `}{` + EscapeLaTeX(p.Email) + "}\\\\\n")
	}
	if p.Affiliation != "" {
		b.WriteString(EscapeLaTeX(p.Affiliation) + "\\\\\n")
	}
}

// metadataCommands produces the title/author/date commands from the same
// Metadata record. The author command joins non-empty author names; the
// date falls back to the current-year placeholder.
func metadataCommands(meta Metadata) string {
	var names []string
	for _, a := range meta.Authors {
		if a.Name != "" {
			names = append(names, EscapeLaTeX(a.Name))
		}
	}

	date := meta.Date
	if date == "" {
		date = DatePlaceholder
	}

	var b strings.Builder
	b.WriteString(`\title{` + EscapeLaTeX(meta.Title) + "}\n")
	b.WriteString(`\author{` + strings.Join(names, ", ") + "}\n")
	b.WriteString(`\date{` + date + "}\n")
	return b.String()
}

// AssembleDocument concatenates the fixed preamble, generated metadata
// commands, begin-document marker, frontmatter block, processed body, and
// end-document marker into the final document text.
func AssembleDocument(meta Metadata, body string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString(metadataCommands(meta))
	b.WriteString(beginDocument + "\n")
	b.WriteString(BuildFrontmatter(meta))
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n" + endDocument + "\n")
	return b.String()
}
