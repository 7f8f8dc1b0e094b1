package document

import (
	"reflect"
	"testing"
)

func TestToStorage(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
		want string
	}{
		{
			name: "heading and paragraph",
			doc: &Document{Blocks: []Block{
				&Heading{Level: 2, Inline: []Inline{&Text{Text: "Title"}}},
				&Paragraph{Inline: []Inline{&Text{Text: "body"}}},
			}},
			want: "<h2>Title</h2><p>body</p>",
		},
		{
			name: "lists",
			doc: &Document{Blocks: []Block{
				&BulletList{Items: [][]Inline{{&Text{Text: "one"}}, {&Text{Text: "two"}}}},
				&OrderedList{Items: [][]Inline{{&Text{Text: "first"}}}},
			}},
			want: "<ul><li>one</li><li>two</li></ul><ol><li>first</li></ol>",
		},
		{
			name: "inline formatting",
			doc: &Document{Blocks: []Block{
				&Paragraph{Inline: []Inline{
					&Bold{Text: "b"},
					&Italic{Text: "i"},
					&InlineCode{Text: "c"},
					&Link{Text: "docs", Href: "https://example.com"},
				}},
			}},
			want: `<p><strong>b</strong><em>i</em><code>c</code><a href="https://example.com">docs</a></p>`,
		},
		{
			name: "text is escaped",
			doc: &Document{Blocks: []Block{
				&Paragraph{Inline: []Inline{&Text{Text: `a < b & "c"`}}},
			}},
			want: "<p>a &lt; b &amp; &quot;c&quot;</p>",
		},
		{
			name: "code block is preformatted and escaped",
			doc: &Document{Blocks: []Block{
				&CodeBlock{Language: "go", Text: "if a < b {\n\treturn\n}"},
			}},
			want: `<pre data-language="go">if a &lt; b {` + "\n\treturn\n}</pre>",
		},
		{
			name: "heading level clamped",
			doc: &Document{Blocks: []Block{
				&Heading{Level: 9, Inline: []Inline{&Text{Text: "deep"}}},
			}},
			want: "<h6>deep</h6>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToStorage(tt.doc); got != tt.want {
				t.Errorf("ToStorage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStorage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "supported subset parses back",
			input: "<h2>Title</h2><p>body <strong>bold</strong></p>",
			want: []Block{
				&Heading{Level: 2, Inline: []Inline{&Text{Text: "Title"}}},
				&Paragraph{Inline: []Inline{&Text{Text: "body "}, &Bold{Text: "bold"}}},
			},
		},
		{
			name:  "entities decode",
			input: "<p>a &lt; b &amp; c</p>",
			want: []Block{
				&Paragraph{Inline: []Inline{&Text{Text: "a < b & c"}}},
			},
		},
		{
			name:  "link keeps href",
			input: `<p><a href="https://example.com/x?a=1&amp;b=2">docs</a></p>`,
			want: []Block{
				&Paragraph{Inline: []Inline{
					&Link{Text: "docs", Href: "https://example.com/x?a=1&b=2"},
				}},
			},
		},
		{
			name:  "table is dropped whole",
			input: "<table><tr><td>cell</td></tr></table><p>kept</p>",
			want: []Block{
				&Paragraph{Inline: []Inline{&Text{Text: "kept"}}},
			},
		},
		{
			name:  "macro is dropped whole",
			input: `<ac:structured-macro ac:name="info"><ac:rich-text-body><p>inside</p></ac:rich-text-body></ac:structured-macro><p>after</p>`,
			want: []Block{
				&Paragraph{Inline: []Inline{&Text{Text: "after"}}},
			},
		},
		{
			name:  "nested list dropped, item text kept",
			input: "<ul><li>top<ul><li>nested</li></ul></li><li>second</li></ul>",
			want: []Block{
				&BulletList{Items: [][]Inline{
					{&Text{Text: "top"}},
					{&Text{Text: "second"}},
				}},
			},
		},
		{
			name:  "preformatted block",
			input: "<pre>if a &lt; b {\n\treturn\n}</pre>",
			want: []Block{
				&CodeBlock{Text: "if a < b {\n\treturn\n}"},
			},
		},
		{
			name:  "bare text becomes a paragraph",
			input: "loose text<p>real paragraph</p>",
			want: []Block{
				&Paragraph{Inline: []Inline{&Text{Text: "loose text"}}},
				&Paragraph{Inline: []Inline{&Text{Text: "real paragraph"}}},
			},
		},
		{
			name:  "whitespace between blocks ignored",
			input: "<h1>A</h1>\n  <p>b</p>\n",
			want: []Block{
				&Heading{Level: 1, Inline: []Inline{&Text{Text: "A"}}},
				&Paragraph{Inline: []Inline{&Text{Text: "b"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStorage(tt.input)
			if !reflect.DeepEqual(got.Blocks, tt.want) {
				t.Errorf("ParseStorage(%q) = %#v, want %#v", tt.input, got.Blocks, tt.want)
			}
		})
	}
}

func TestStorageRoundTrip(t *testing.T) {
	doc := ParseMarkup("## Release Notes\n\nShipped the *new* importer.\n\n- faster sync\n- `--dry-run` flag\n\n```sh\natlas sync --all\n```\n")
	back := ParseStorage(ToStorage(doc))
	if !reflect.DeepEqual(back, doc) {
		t.Errorf("storage round trip changed the document:\n got %#v\nwant %#v", back, doc)
	}
}
