package confluence

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/odyssey4me/atlascore/deploy"
	"github.com/odyssey4me/atlascore/document"
	"github.com/odyssey4me/atlascore/query"
)

const defaultSearchLimit = 25

// pageBody renders authored markup as the body representation the detected
// dialect expects: atlas_doc_format on Cloud, storage on Data Center.
func (c *Client) pageBody(ctx context.Context, markup string) (*Body, error) {
	dialect, err := c.dialect(ctx)
	if err != nil {
		return nil, err
	}
	doc := document.ParseMarkup(markup)

	if dialect == deploy.DialectCloud {
		value, err := document.Render(doc, document.FormatADF)
		if err != nil {
			return nil, err
		}
		return &Body{ADF: &BodyValue{Value: value, Representation: "atlas_doc_format"}}, nil
	}
	return &Body{Storage: &BodyValue{Value: document.ToStorage(doc), Representation: "storage"}}, nil
}

// bodyExpand names the body representation to expand on reads, per dialect.
func (c *Client) bodyExpand(ctx context.Context) (string, error) {
	dialect, err := c.dialect(ctx)
	if err != nil {
		return "", err
	}
	if dialect == deploy.DialectCloud {
		return "body.atlas_doc_format,version,space", nil
	}
	return "body.storage,version,space", nil
}

// GetPage fetches one page by ID with its body and version.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	expand, err := c.bodyExpand(ctx)
	if err != nil {
		return nil, err
	}
	path, err := c.path(ctx, "/content/"+url.PathEscape(id)+"?expand="+url.QueryEscape(expand))
	if err != nil {
		return nil, err
	}
	var page Page
	if err := c.exec.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePageInput describes a new page. Body is authored markup.
type CreatePageInput struct {
	Space    string
	Title    string
	Body     string
	ParentID string
}

// CreatePage creates a page and returns it with its assigned ID.
func (c *Client) CreatePage(ctx context.Context, input CreatePageInput) (*Page, error) {
	if input.Space == "" || input.Title == "" {
		return nil, fmt.Errorf("confluence: space and title are required")
	}
	body, err := c.pageBody(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"type":  "page",
		"title": input.Title,
		"space": map[string]string{"key": input.Space},
		"body":  body,
	}
	if input.ParentID != "" {
		payload["ancestors"] = []map[string]string{{"id": input.ParentID}}
	}

	path, err := c.path(ctx, "/content")
	if err != nil {
		return nil, err
	}
	var created Page
	if err := c.exec.Post(ctx, path, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePage replaces a page's title and body, bumping the version number
// from the current one. The read and the write are not atomic; a concurrent
// editor loses by version conflict, which the server reports as a 409.
func (c *Client) UpdatePage(ctx context.Context, id, title, markup string) (*Page, error) {
	current, err := c.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version == nil {
		return nil, fmt.Errorf("confluence: page %s has no version info", id)
	}
	if title == "" {
		title = current.Title
	}
	body, err := c.pageBody(ctx, markup)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"type":    "page",
		"title":   title,
		"version": map[string]int{"number": current.Version.Number + 1},
		"body":    body,
	}

	path, err := c.path(ctx, "/content/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var updated Page
	if err := c.exec.Put(ctx, path, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SearchOptions tunes a CQL search. Zero values fall back to the per-space
// config defaults, then to package defaults.
type SearchOptions struct {
	// Space selects which per-space config defaults apply.
	Space string
	Limit int
}

// SearchCQL runs a CQL search. The configured default scope for the space,
// when present, is merged into the query by conjunction. Queries using
// advanced CQL functions trigger a warning when the instance is known not
// to support them; the query is still sent.
func (c *Client) SearchCQL(ctx context.Context, cql string, opts SearchOptions) (*SearchResult, error) {
	defaults := c.service.DefaultsFor(opts.Space)

	cql = query.Merge(cql, defaults.Scope)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaults.MaxResults
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if query.UsesAdvancedCQL(cql) {
		caps, err := c.detector.Capabilities(ctx, c.baseURL, false)
		if err != nil {
			c.warn("could not determine CQL capabilities: %v", err)
		} else if !caps.AdvancedCQL {
			c.warn("query uses advanced CQL functions this instance does not support")
		}
	}

	path, err := c.path(ctx, "/content/search?limit="+strconv.Itoa(limit)+"&cql="+url.QueryEscape(cql))
	if err != nil {
		return nil, err
	}
	var result SearchResult
	if err := c.exec.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddComment adds a comment authored in markup to a page.
func (c *Client) AddComment(ctx context.Context, pageID, markup string) (*Page, error) {
	body, err := c.pageBody(ctx, markup)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"type":      "comment",
		"container": map[string]string{"id": pageID, "type": "page"},
		"body":      body,
	}

	path, err := c.path(ctx, "/content")
	if err != nil {
		return nil, err
	}
	var created Page
	if err := c.exec.Post(ctx, path, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// PageMarkup renders a page body back to markup from whichever
// representation it carries.
func PageMarkup(page *Page) (string, error) {
	if page.Body == nil {
		return "", nil
	}
	switch {
	case page.Body.ADF != nil:
		doc, err := document.Parse(page.Body.ADF.Value, document.FormatADF)
		if err != nil {
			return "", fmt.Errorf("confluence: page %s: %w", page.ID, err)
		}
		return document.RenderMarkup(doc), nil
	case page.Body.Storage != nil:
		return document.RenderMarkup(document.ParseStorage(page.Body.Storage.Value)), nil
	default:
		return "", nil
	}
}
