package document

import "encoding/json"

// ADF is the JSON document format Cloud deployments expect for rich text
// fields. Only the node types Document can express are produced; everything
// else is dropped on the way back in.

// ADFDocument is the top-level ADF envelope.
type ADFDocument struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []ADFNode `json:"content"`
}

// ADFNode is a block or inline node.
type ADFNode struct {
	Type    string         `json:"type"`
	Content []ADFNode      `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []ADFMark      `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// ADFMark annotates a text node with formatting.
type ADFMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

const (
	adfNodeParagraph   = "paragraph"
	adfNodeHeading     = "heading"
	adfNodeBulletList  = "bulletList"
	adfNodeOrderedList = "orderedList"
	adfNodeListItem    = "listItem"
	adfNodeCodeBlock   = "codeBlock"
	adfNodeText        = "text"
	adfNodeHardBreak   = "hardBreak"

	adfMarkStrong = "strong"
	adfMarkEm     = "em"
	adfMarkCode   = "code"
	adfMarkLink   = "link"
)

// ToADF converts a Document to its ADF form.
func ToADF(doc *Document) *ADFDocument {
	adf := &ADFDocument{Version: 1, Type: "doc"}
	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case *Heading:
			adf.Content = append(adf.Content, ADFNode{
				Type:    adfNodeHeading,
				Attrs:   map[string]any{"level": b.Level},
				Content: adfInline(b.Inline),
			})
		case *Paragraph:
			adf.Content = append(adf.Content, ADFNode{
				Type:    adfNodeParagraph,
				Content: adfInline(b.Inline),
			})
		case *BulletList:
			adf.Content = append(adf.Content, adfList(adfNodeBulletList, b.Items))
		case *OrderedList:
			adf.Content = append(adf.Content, adfList(adfNodeOrderedList, b.Items))
		case *CodeBlock:
			node := ADFNode{
				Type:    adfNodeCodeBlock,
				Content: []ADFNode{{Type: adfNodeText, Text: b.Text}},
			}
			if b.Language != "" {
				node.Attrs = map[string]any{"language": b.Language}
			}
			adf.Content = append(adf.Content, node)
		}
	}
	return adf
}

func adfList(listType string, items [][]Inline) ADFNode {
	list := ADFNode{Type: listType}
	for _, item := range items {
		list.Content = append(list.Content, ADFNode{
			Type: adfNodeListItem,
			Content: []ADFNode{{
				Type:    adfNodeParagraph,
				Content: adfInline(item),
			}},
		})
	}
	return list
}

func adfInline(spans []Inline) []ADFNode {
	var nodes []ADFNode
	for _, span := range spans {
		switch s := span.(type) {
		case *Text:
			nodes = append(nodes, ADFNode{Type: adfNodeText, Text: s.Text})
		case *Bold:
			nodes = append(nodes, ADFNode{
				Type: adfNodeText, Text: s.Text,
				Marks: []ADFMark{{Type: adfMarkStrong}},
			})
		case *Italic:
			nodes = append(nodes, ADFNode{
				Type: adfNodeText, Text: s.Text,
				Marks: []ADFMark{{Type: adfMarkEm}},
			})
		case *InlineCode:
			nodes = append(nodes, ADFNode{
				Type: adfNodeText, Text: s.Text,
				Marks: []ADFMark{{Type: adfMarkCode}},
			})
		case *Link:
			nodes = append(nodes, ADFNode{
				Type: adfNodeText, Text: s.Text,
				Marks: []ADFMark{{Type: adfMarkLink, Attrs: map[string]any{"href": s.Href}}},
			})
		}
	}
	return nodes
}

// FromADF converts an ADF document back to a Document, best effort. Node
// types outside the supported set (tables, panels, media, mentions) are
// dropped; nested lists inside a list item are dropped with the item's
// direct content kept.
func FromADF(adf *ADFDocument) *Document {
	doc := &Document{}
	for _, node := range adf.Content {
		switch node.Type {
		case adfNodeHeading:
			doc.Blocks = append(doc.Blocks, &Heading{
				Level:  adfIntAttr(node.Attrs, "level", 1),
				Inline: inlineFromADF(node.Content),
			})
		case adfNodeParagraph:
			doc.Blocks = append(doc.Blocks, &Paragraph{Inline: inlineFromADF(node.Content)})
		case adfNodeBulletList:
			doc.Blocks = append(doc.Blocks, &BulletList{Items: itemsFromADF(node.Content)})
		case adfNodeOrderedList:
			doc.Blocks = append(doc.Blocks, &OrderedList{Items: itemsFromADF(node.Content)})
		case adfNodeCodeBlock:
			block := &CodeBlock{}
			if lang, ok := node.Attrs["language"].(string); ok {
				block.Language = lang
			}
			for _, child := range node.Content {
				if child.Type == adfNodeText {
					block.Text += child.Text
				}
			}
			doc.Blocks = append(doc.Blocks, block)
		default:
			// unsupported block node, dropped
		}
	}
	return doc
}

func itemsFromADF(listContent []ADFNode) [][]Inline {
	var items [][]Inline
	for _, item := range listContent {
		if item.Type != adfNodeListItem {
			continue
		}
		var spans []Inline
		for _, child := range item.Content {
			switch child.Type {
			case adfNodeParagraph:
				spans = append(spans, inlineFromADF(child.Content)...)
			case adfNodeBulletList, adfNodeOrderedList:
				// nested list, dropped
			}
		}
		items = append(items, spans)
	}
	return items
}

// inlineFromADF maps text nodes back to spans. When a node carries several
// marks the strongest one wins, in the order code, link, strong, em.
func inlineFromADF(nodes []ADFNode) []Inline {
	var spans []Inline
	for _, node := range nodes {
		switch node.Type {
		case adfNodeText:
			spans = append(spans, spanFromMarks(node))
		case adfNodeHardBreak:
			spans = append(spans, &Text{Text: " "})
		default:
			// unsupported inline node, dropped
		}
	}
	return spans
}

func spanFromMarks(node ADFNode) Inline {
	marks := map[string]ADFMark{}
	for _, m := range node.Marks {
		marks[m.Type] = m
	}
	if _, ok := marks[adfMarkCode]; ok {
		return &InlineCode{Text: node.Text}
	}
	if link, ok := marks[adfMarkLink]; ok {
		href, _ := link.Attrs["href"].(string)
		return &Link{Text: node.Text, Href: href}
	}
	if _, ok := marks[adfMarkStrong]; ok {
		return &Bold{Text: node.Text}
	}
	if _, ok := marks[adfMarkEm]; ok {
		return &Italic{Text: node.Text}
	}
	return &Text{Text: node.Text}
}

// adfIntAttr reads a numeric attribute that may arrive as float64 after a
// round trip through encoding/json.
func adfIntAttr(attrs map[string]any, key string, fallback int) int {
	switch v := attrs[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
