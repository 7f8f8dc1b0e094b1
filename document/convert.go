package document

import (
	"encoding/json"
	"fmt"
)

// Format identifies a serialized content representation.
type Format string

const (
	// FormatMarkup is the lightweight authoring markup.
	FormatMarkup Format = "markdown"
	// FormatStorage is the XHTML-like storage format of Data Center.
	FormatStorage Format = "storage"
	// FormatADF is the JSON document format of Cloud.
	FormatADF Format = "adf"
)

// Parse reads content in the given format into a Document.
func Parse(content string, from Format) (*Document, error) {
	switch from {
	case FormatMarkup:
		return ParseMarkup(content), nil
	case FormatStorage:
		return ParseStorage(content), nil
	case FormatADF:
		var adf ADFDocument
		if err := json.Unmarshal([]byte(content), &adf); err != nil {
			return nil, fmt.Errorf("parsing ADF document: %w", err)
		}
		return FromADF(&adf), nil
	default:
		return nil, fmt.Errorf("unknown content format %q", from)
	}
}

// Render serializes a Document in the given format. ADF output is the JSON
// encoding of the document envelope.
func Render(doc *Document, to Format) (string, error) {
	switch to {
	case FormatMarkup:
		return RenderMarkup(doc), nil
	case FormatStorage:
		return ToStorage(doc), nil
	case FormatADF:
		data, err := json.Marshal(ToADF(doc))
		if err != nil {
			return "", fmt.Errorf("encoding ADF document: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown content format %q", to)
	}
}

// Convert translates content from one format to another through the
// intermediate tree. Converting a format to itself still normalizes the
// content through the tree.
func Convert(content string, from, to Format) (string, error) {
	doc, err := Parse(content, from)
	if err != nil {
		return "", err
	}
	return Render(doc, to)
}
