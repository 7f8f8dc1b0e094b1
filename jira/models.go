package jira

import "encoding/json"

// Issue is a Jira issue as returned by the REST API.
type Issue struct {
	ID     string      `json:"id,omitempty"`
	Key    string      `json:"key"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the subset of issue fields this client reads.
// Description stays raw because its shape depends on the dialect: an ADF
// object on Cloud, a plain string on Data Center.
type IssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description,omitempty"`
	Status      *Status         `json:"status,omitempty"`
	IssueType   *IssueType      `json:"issuetype,omitempty"`
	Priority    *Priority       `json:"priority,omitempty"`
	Assignee    *User           `json:"assignee,omitempty"`
	Reporter    *User           `json:"reporter,omitempty"`
	Project     *Project        `json:"project,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	Created     string          `json:"created,omitempty"`
	Updated     string          `json:"updated,omitempty"`
}

// Status is an issue workflow status.
type Status struct {
	Name string `json:"name"`
}

// IssueType is an issue type such as Task or Bug.
type IssueType struct {
	Name string `json:"name"`
}

// Priority is an issue priority.
type Priority struct {
	Name string `json:"name"`
}

// User identifies an account. Cloud populates AccountID, Data Center Name.
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	Name         string `json:"name,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Project identifies a Jira project.
type Project struct {
	Key string `json:"key"`
}

// SearchResult is one page of issue search results.
type SearchResult struct {
	Total      int     `json:"total"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Issues     []Issue `json:"issues"`
}

// Transition is a workflow transition available on an issue.
type Transition struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	To   *Status `json:"to,omitempty"`
}

// Comment is an issue comment. Body stays raw for the same reason as
// IssueFields.Description.
type Comment struct {
	ID   string          `json:"id"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Myself is the authenticated account, used for connectivity checks.
type Myself struct {
	AccountID    string `json:"accountId,omitempty"`
	Name         string `json:"name,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}
