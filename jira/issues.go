package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/odyssey4me/atlascore/document"
	"github.com/odyssey4me/atlascore/query"
)

// defaultSearchFields is used when neither the caller nor the config file
// names the fields to fetch.
var defaultSearchFields = []string{"summary", "status", "issuetype", "assignee", "updated"}

const defaultMaxResults = 50

// SearchOptions tunes an issue search. Zero values fall back to the
// per-project defaults from the config file, then to package defaults.
type SearchOptions struct {
	// Project selects which per-project config defaults apply.
	Project    string
	MaxResults int
	Fields     []string
}

// SearchIssues runs a JQL search. The configured default scope for the
// project, when present, is merged into the query by conjunction.
func (c *Client) SearchIssues(ctx context.Context, jql string, opts SearchOptions) (*SearchResult, error) {
	defaults := c.service.DefaultsFor(opts.Project)

	jql = query.Merge(jql, defaults.Scope)

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaults.MaxResults
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = defaults.Fields
	}
	if len(fields) == 0 {
		fields = defaultSearchFields
	}

	path, err := c.path(ctx, "/search")
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"jql":        jql,
		"maxResults": maxResults,
		"fields":     fields,
	}
	var result SearchResult
	if err := c.exec.Post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	if err := ValidateIssueKey(key); err != nil {
		return nil, err
	}
	path, err := c.path(ctx, "/issue/"+key)
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := c.exec.Get(ctx, path, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssueInput describes a new issue. Description is authored markup
// and is converted to the dialect's native format.
type CreateIssueInput struct {
	Project     string
	Summary     string
	IssueType   string
	Description string
	Labels      []string
}

// CreateIssue creates an issue and returns its key.
func (c *Client) CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error) {
	if input.Project == "" || input.Summary == "" {
		return nil, fmt.Errorf("jira: project and summary are required")
	}
	issueType := input.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	fields := map[string]any{
		"project":   map[string]string{"key": input.Project},
		"summary":   input.Summary,
		"issuetype": map[string]string{"name": issueType},
	}
	if len(input.Labels) > 0 {
		fields["labels"] = input.Labels
	}
	if input.Description != "" {
		desc, err := c.richText(ctx, input.Description)
		if err != nil {
			return nil, err
		}
		fields["description"] = desc
	}

	path, err := c.path(ctx, "/issue")
	if err != nil {
		return nil, err
	}
	var created Issue
	if err := c.exec.Post(ctx, path, map[string]any{"fields": fields}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateIssueInput names the fields to change. Nil pointers leave a field
// untouched; an empty string clears it.
type UpdateIssueInput struct {
	Summary     *string
	Description *string
	Labels      []string
}

// UpdateIssue applies a partial update to an issue.
func (c *Client) UpdateIssue(ctx context.Context, key string, input UpdateIssueInput) error {
	if err := ValidateIssueKey(key); err != nil {
		return err
	}

	fields := map[string]any{}
	if input.Summary != nil {
		fields["summary"] = *input.Summary
	}
	if input.Description != nil {
		desc, err := c.richText(ctx, *input.Description)
		if err != nil {
			return err
		}
		fields["description"] = desc
	}
	if input.Labels != nil {
		fields["labels"] = input.Labels
	}
	if len(fields) == 0 {
		return fmt.Errorf("jira: no fields to update on %s", key)
	}

	path, err := c.path(ctx, "/issue/"+key)
	if err != nil {
		return err
	}
	return c.exec.Put(ctx, path, map[string]any{"fields": fields}, nil)
}

// Transitions lists the workflow transitions currently available on an
// issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]Transition, error) {
	if err := ValidateIssueKey(key); err != nil {
		return nil, err
	}
	path, err := c.path(ctx, "/issue/"+key+"/transitions")
	if err != nil {
		return nil, err
	}
	var result struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.exec.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// TransitionIssue moves an issue through the transition named by ID or by
// case-insensitive name.
func (c *Client) TransitionIssue(ctx context.Context, key, idOrName string) error {
	transitions, err := c.Transitions(ctx, key)
	if err != nil {
		return err
	}

	var id string
	for _, tr := range transitions {
		if tr.ID == idOrName || strings.EqualFold(tr.Name, idOrName) {
			id = tr.ID
			break
		}
	}
	if id == "" {
		names := make([]string, 0, len(transitions))
		for _, tr := range transitions {
			names = append(names, tr.Name)
		}
		return fmt.Errorf("jira: no transition %q on %s, available: %s",
			idOrName, key, strings.Join(names, ", "))
	}

	path, err := c.path(ctx, "/issue/"+key+"/transitions")
	if err != nil {
		return err
	}
	body := map[string]any{"transition": map[string]string{"id": id}}
	return c.exec.Post(ctx, path, body, nil)
}

// AddComment adds a comment authored in markup.
func (c *Client) AddComment(ctx context.Context, key, markup string) (*Comment, error) {
	if err := ValidateIssueKey(key); err != nil {
		return nil, err
	}
	body, err := c.richText(ctx, markup)
	if err != nil {
		return nil, err
	}
	path, err := c.path(ctx, "/issue/"+key+"/comment")
	if err != nil {
		return nil, err
	}
	var comment Comment
	if err := c.exec.Post(ctx, path, map[string]any{"body": body}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns the comments on an issue.
func (c *Client) ListComments(ctx context.Context, key string) ([]Comment, error) {
	if err := ValidateIssueKey(key); err != nil {
		return nil, err
	}
	path, err := c.path(ctx, "/issue/"+key+"/comment")
	if err != nil {
		return nil, err
	}
	var result struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.exec.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Comments, nil
}

// DescriptionMarkup renders an issue's description back to markup. The raw
// field is an ADF object on Cloud and a plain string on Data Center; both
// are handled by shape so callers need not know the dialect.
func DescriptionMarkup(issue *Issue) (string, error) {
	return rawRichText(issue.Fields.Description)
}

// CommentMarkup renders a comment body back to markup.
func CommentMarkup(comment *Comment) (string, error) {
	return rawRichText(comment.Body)
}

func rawRichText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}

	var adf document.ADFDocument
	if err := json.Unmarshal(raw, &adf); err != nil {
		return "", fmt.Errorf("jira: unrecognized rich text value: %w", err)
	}
	return document.RenderMarkup(document.FromADF(&adf)), nil
}
