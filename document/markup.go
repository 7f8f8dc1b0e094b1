package document

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	orderedItemPattern = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	linkPattern        = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)`)
)

// ParseMarkup parses lightweight markup into a Document. The grammar is
// line-oriented: headings are lines of 1-6 '#' characters, list items start
// with "- ", "* ", or "N. ", fences open and close with "```", and anything
// else accumulates into paragraphs. Consecutive paragraph lines join with a
// single space. An unterminated fence runs to end of input.
func ParseMarkup(text string) *Document {
	doc := &Document{}
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "":
			i++

		case strings.HasPrefix(trimmed, "```"):
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var code []string
			i++
			for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
				code = append(code, lines[i])
				i++
			}
			i++ // closing fence, or past end when unterminated
			doc.Blocks = append(doc.Blocks, &CodeBlock{
				Language: lang,
				Text:     strings.Join(code, "\n"),
			})

		case headingLevel(trimmed) > 0:
			level := headingLevel(trimmed)
			doc.Blocks = append(doc.Blocks, &Heading{
				Level:  level,
				Inline: parseInline(strings.TrimSpace(trimmed[level:])),
			})
			i++

		case isBulletItem(trimmed):
			var items [][]Inline
			for i < len(lines) {
				item := strings.TrimSpace(lines[i])
				if !isBulletItem(item) {
					break
				}
				items = append(items, parseInline(strings.TrimSpace(item[2:])))
				i++
			}
			doc.Blocks = append(doc.Blocks, &BulletList{Items: items})

		case orderedItemPattern.MatchString(trimmed):
			var items [][]Inline
			for i < len(lines) {
				m := orderedItemPattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
				if m == nil {
					break
				}
				items = append(items, parseInline(m[1]))
				i++
			}
			doc.Blocks = append(doc.Blocks, &OrderedList{Items: items})

		default:
			var para []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || headingLevel(t) > 0 || isBulletItem(t) ||
					orderedItemPattern.MatchString(t) || strings.HasPrefix(t, "```") {
					break
				}
				para = append(para, t)
				i++
			}
			doc.Blocks = append(doc.Blocks, &Paragraph{
				Inline: parseInline(strings.Join(para, " ")),
			})
		}
	}
	return doc
}

// headingLevel returns the heading level of a trimmed line, or 0 when the
// line is not a heading. The marker must be followed by a space or nothing.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level < len(line) && line[level] != ' ' {
		return 0
	}
	return level
}

func isBulletItem(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}

// parseInline tokenizes one inline run. Delimiters are tried at each
// position in fixed precedence: code span, link, bold, italic. A delimiter
// without a matching closer is literal text. Code span contents are taken
// verbatim and never rescanned.
func parseInline(s string) []Inline {
	var spans []Inline
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			spans = append(spans, &Text{Text: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(s) {
		rest := s[i:]

		if rest[0] == '`' {
			if end := strings.Index(rest[1:], "`"); end >= 0 {
				flush()
				spans = append(spans, &InlineCode{Text: rest[1 : end+1]})
				i += end + 2
				continue
			}
		}

		if rest[0] == '[' {
			if m := linkPattern.FindStringSubmatch(rest); m != nil {
				flush()
				spans = append(spans, &Link{Text: m[1], Href: m[2]})
				i += len(m[0])
				continue
			}
		}

		if strings.HasPrefix(rest, "**") {
			if end := strings.Index(rest[2:], "**"); end >= 0 {
				flush()
				spans = append(spans, &Bold{Text: rest[2 : end+2]})
				i += end + 4
				continue
			}
		}

		if rest[0] == '*' || rest[0] == '_' {
			delim := rest[:1]
			if end := strings.Index(rest[1:], delim); end >= 0 {
				flush()
				spans = append(spans, &Italic{Text: rest[1 : end+1]})
				i += end + 2
				continue
			}
		}

		literal.WriteByte(s[i])
		i++
	}
	flush()
	return spans
}

// RenderMarkup serializes a Document back to markup. Blocks are separated
// by blank lines; list items render one per line.
func RenderMarkup(doc *Document) string {
	var parts []string
	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case *Heading:
			parts = append(parts, strings.Repeat("#", b.Level)+" "+renderInline(b.Inline))
		case *Paragraph:
			parts = append(parts, renderInline(b.Inline))
		case *BulletList:
			var lines []string
			for _, item := range b.Items {
				lines = append(lines, "- "+renderInline(item))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case *OrderedList:
			var lines []string
			for n, item := range b.Items {
				lines = append(lines, fmt.Sprintf("%d. %s", n+1, renderInline(item)))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case *CodeBlock:
			parts = append(parts, "```"+b.Language+"\n"+b.Text+"\n```")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func renderInline(spans []Inline) string {
	var b strings.Builder
	for _, span := range spans {
		switch s := span.(type) {
		case *Text:
			b.WriteString(s.Text)
		case *Bold:
			b.WriteString("**" + s.Text + "**")
		case *Italic:
			b.WriteString("*" + s.Text + "*")
		case *InlineCode:
			b.WriteString("`" + s.Text + "`")
		case *Link:
			b.WriteString("[" + s.Text + "](" + s.Href + ")")
		}
	}
	return b.String()
}
