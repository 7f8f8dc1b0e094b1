package document

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var storageEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// ToStorage serializes a Document to the XHTML-like storage format used by
// Data Center installs. Text content and attribute values are escaped.
func ToStorage(doc *Document) string {
	var b strings.Builder
	for _, block := range doc.Blocks {
		switch blk := block.(type) {
		case *Heading:
			level := blk.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			fmt.Fprintf(&b, "<h%d>%s</h%d>", level, storageInline(blk.Inline), level)
		case *Paragraph:
			b.WriteString("<p>" + storageInline(blk.Inline) + "</p>")
		case *BulletList:
			b.WriteString("<ul>")
			for _, item := range blk.Items {
				b.WriteString("<li>" + storageInline(item) + "</li>")
			}
			b.WriteString("</ul>")
		case *OrderedList:
			b.WriteString("<ol>")
			for _, item := range blk.Items {
				b.WriteString("<li>" + storageInline(item) + "</li>")
			}
			b.WriteString("</ol>")
		case *CodeBlock:
			if blk.Language != "" {
				b.WriteString(`<pre data-language="` + storageEscaper.Replace(blk.Language) + `">`)
			} else {
				b.WriteString("<pre>")
			}
			b.WriteString(storageEscaper.Replace(blk.Text) + "</pre>")
		}
	}
	return b.String()
}

func storageInline(spans []Inline) string {
	var b strings.Builder
	for _, span := range spans {
		switch s := span.(type) {
		case *Text:
			b.WriteString(storageEscaper.Replace(s.Text))
		case *Bold:
			b.WriteString("<strong>" + storageEscaper.Replace(s.Text) + "</strong>")
		case *Italic:
			b.WriteString("<em>" + storageEscaper.Replace(s.Text) + "</em>")
		case *InlineCode:
			b.WriteString("<code>" + storageEscaper.Replace(s.Text) + "</code>")
		case *Link:
			b.WriteString(`<a href="` + storageEscaper.Replace(s.Href) + `">` +
				storageEscaper.Replace(s.Text) + "</a>")
		}
	}
	return b.String()
}

// storageToken is one lexed unit of storage markup. A token with an empty
// name carries literal text, already entity-decoded.
type storageToken struct {
	text      string
	name      string
	closing   bool
	selfClose bool
	attrs     map[string]string
}

var attrPattern = regexp.MustCompile(`([a-zA-Z][\w:-]*)\s*=\s*"([^"]*)"`)

func lexStorage(s string) []storageToken {
	var tokens []storageToken
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			tokens = append(tokens, storageToken{text: html.UnescapeString(s)})
			break
		}
		if lt > 0 {
			tokens = append(tokens, storageToken{text: html.UnescapeString(s[:lt])})
			s = s[lt:]
		}
		gt := strings.IndexByte(s, '>')
		if gt < 0 {
			// malformed tail, keep as text
			tokens = append(tokens, storageToken{text: html.UnescapeString(s)})
			break
		}
		inner := strings.TrimSpace(s[1:gt])
		s = s[gt+1:]

		tok := storageToken{attrs: map[string]string{}}
		if strings.HasPrefix(inner, "/") {
			tok.closing = true
			inner = strings.TrimPrefix(inner, "/")
		}
		if strings.HasSuffix(inner, "/") {
			tok.selfClose = true
			inner = strings.TrimSuffix(inner, "/")
		}
		name := inner
		if sp := strings.IndexAny(inner, " \t\n"); sp >= 0 {
			name = inner[:sp]
			for _, m := range attrPattern.FindAllStringSubmatch(inner[sp:], -1) {
				tok.attrs[strings.ToLower(m[1])] = html.UnescapeString(m[2])
			}
		}
		tok.name = strings.ToLower(name)
		tokens = append(tokens, tok)
	}
	return tokens
}

// ParseStorage parses storage markup into a Document, best effort. Tags
// outside the supported set (tables, macros, layout markup) are dropped
// together with their subtrees. Nested lists inside a list item are dropped
// the same way; the item keeps its direct inline content.
func ParseStorage(s string) *Document {
	p := &storageParser{tokens: lexStorage(s)}
	doc := &Document{}

	for !p.eof() {
		tok := p.next()
		switch {
		case tok.name == "":
			if t := strings.TrimSpace(tok.text); t != "" {
				doc.Blocks = append(doc.Blocks, &Paragraph{Inline: []Inline{&Text{Text: t}}})
			}
		case tok.closing:
			// stray close, drop
		case len(tok.name) == 2 && tok.name[0] == 'h' && tok.name[1] >= '1' && tok.name[1] <= '6':
			doc.Blocks = append(doc.Blocks, &Heading{
				Level:  int(tok.name[1] - '0'),
				Inline: p.inlineUntil(tok.name),
			})
		case tok.name == "p":
			doc.Blocks = append(doc.Blocks, &Paragraph{Inline: p.inlineUntil("p")})
		case tok.name == "ul":
			doc.Blocks = append(doc.Blocks, &BulletList{Items: p.listItems("ul")})
		case tok.name == "ol":
			doc.Blocks = append(doc.Blocks, &OrderedList{Items: p.listItems("ol")})
		case tok.name == "pre":
			doc.Blocks = append(doc.Blocks, &CodeBlock{
				Language: tok.attrs["data-language"],
				Text:     p.textUntil("pre"),
			})
		default:
			// unsupported block, drop the whole subtree
			if !tok.selfClose {
				p.skipSubtree(tok.name)
			}
		}
	}
	return doc
}

type storageParser struct {
	tokens []storageToken
	pos    int
}

func (p *storageParser) eof() bool { return p.pos >= len(p.tokens) }

func (p *storageParser) next() storageToken {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

// inlineUntil consumes tokens up to the closing tag named by until and
// returns the inline spans found. Unsupported inline tags drop with their
// subtrees; mismatched closers drop alone.
func (p *storageParser) inlineUntil(until string) []Inline {
	var spans []Inline
	for !p.eof() {
		tok := p.next()
		switch {
		case tok.name == "":
			if tok.text != "" {
				spans = append(spans, &Text{Text: tok.text})
			}
		case tok.closing && tok.name == until:
			return spans
		case tok.closing:
			// mismatched close, drop
		case tok.name == "strong" || tok.name == "b":
			spans = append(spans, &Bold{Text: p.textUntil(tok.name)})
		case tok.name == "em" || tok.name == "i":
			spans = append(spans, &Italic{Text: p.textUntil(tok.name)})
		case tok.name == "code":
			spans = append(spans, &InlineCode{Text: p.textUntil(tok.name)})
		case tok.name == "a":
			spans = append(spans, &Link{Text: p.textUntil("a"), Href: tok.attrs["href"]})
		case tok.name == "br":
			spans = append(spans, &Text{Text: " "})
		default:
			if !tok.selfClose {
				p.skipSubtree(tok.name)
			}
		}
	}
	return spans
}

func (p *storageParser) listItems(until string) [][]Inline {
	var items [][]Inline
	for !p.eof() {
		tok := p.next()
		switch {
		case tok.closing && tok.name == until:
			return items
		case tok.name == "li":
			items = append(items, p.inlineUntil("li"))
		case tok.name != "" && !tok.closing && !tok.selfClose:
			p.skipSubtree(tok.name)
		}
	}
	return items
}

// textUntil concatenates text content up to the matching close tag,
// discarding any nested markup.
func (p *storageParser) textUntil(until string) string {
	var b strings.Builder
	depth := 0
	for !p.eof() {
		tok := p.next()
		switch {
		case tok.name == "":
			b.WriteString(tok.text)
		case tok.name == until && tok.closing:
			if depth == 0 {
				return b.String()
			}
			depth--
		case tok.name == until && !tok.selfClose:
			depth++
		}
	}
	return b.String()
}

func (p *storageParser) skipSubtree(name string) {
	depth := 0
	for !p.eof() {
		tok := p.next()
		if tok.name != name {
			continue
		}
		if tok.closing {
			if depth == 0 {
				return
			}
			depth--
		} else if !tok.selfClose {
			depth++
		}
	}
}
