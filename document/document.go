package document

import "strings"

// Document is the intermediate content model. Both the authoring markup and
// either native dialect format are produced from this tree and nothing else.
type Document struct {
	Blocks []Block
}

// Block is a block-level node. The set of implementations is closed so each
// serializer can switch exhaustively and make dropped constructs explicit.
type Block interface {
	isBlock()
}

// Heading is a section heading with level 1-6.
type Heading struct {
	Level  int
	Inline []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inline []Inline
}

// BulletList is an unordered list; each item is a flat inline run.
type BulletList struct {
	Items [][]Inline
}

// OrderedList is a numbered list; each item is a flat inline run.
type OrderedList struct {
	Items [][]Inline
}

// CodeBlock is verbatim preformatted text. No inline parsing applies.
type CodeBlock struct {
	Language string
	Text     string
}

func (*Heading) isBlock()     {}
func (*Paragraph) isBlock()   {}
func (*BulletList) isBlock()  {}
func (*OrderedList) isBlock() {}
func (*CodeBlock) isBlock()   {}

// Inline is an inline span. Closed set, like Block.
type Inline interface {
	isInline()
}

// Text is a literal text span.
type Text struct {
	Text string
}

// Bold is strongly emphasized text.
type Bold struct {
	Text string
}

// Italic is emphasized text.
type Italic struct {
	Text string
}

// InlineCode is a literal code span; its contents are never reprocessed.
type InlineCode struct {
	Text string
}

// Link is a hyperlink.
type Link struct {
	Text string
	Href string
}

func (*Text) isInline()       {}
func (*Bold) isInline()       {}
func (*Italic) isInline()     {}
func (*InlineCode) isInline() {}
func (*Link) isInline()       {}

// InlineText flattens an inline run to its plain text content.
func InlineText(spans []Inline) string {
	var b strings.Builder
	for _, span := range spans {
		switch s := span.(type) {
		case *Text:
			b.WriteString(s.Text)
		case *Bold:
			b.WriteString(s.Text)
		case *Italic:
			b.WriteString(s.Text)
		case *InlineCode:
			b.WriteString(s.Text)
		case *Link:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
