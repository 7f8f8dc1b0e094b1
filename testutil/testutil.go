// Package testutil provides canned API fixtures for service client tests.
package testutil

import (
	"fmt"
	"net/http"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// ServerInfo returns a serverInfo payload with the given deployment type.
func ServerInfo(deploymentType string) string {
	return fmt.Sprintf(`{"baseUrl":"https://example.invalid","version":"1000.0.0","deploymentType":"%s"}`, deploymentType)
}

// Issue returns a minimal issue payload.
func Issue(key, summary, status string) string {
	return fmt.Sprintf(`{
		"id": "10001",
		"key": "%s",
		"fields": {
			"summary": "%s",
			"status": {"name": "%s"},
			"issuetype": {"name": "Task"},
			"project": {"key": "DEV"}
		}
	}`, key, summary, status)
}

// SearchResult returns a one-issue search payload.
func SearchResult(key, summary string) string {
	return fmt.Sprintf(`{"total":1,"startAt":0,"maxResults":50,"issues":[%s]}`,
		Issue(key, summary, "Open"))
}

// Page returns a minimal Confluence page payload in the given body format.
func Page(id, title string, version int, bodyFormat, bodyValue string) string {
	return fmt.Sprintf(`{
		"id": "%s",
		"type": "page",
		"title": "%s",
		"version": {"number": %d},
		"space": {"key": "DEV"},
		"body": {"%s": {"value": %q, "representation": "%s"}}
	}`, id, title, version, bodyFormat, bodyValue, bodyFormat)
}

// Myself returns a minimal current-user payload.
func Myself(displayName, email string) string {
	return fmt.Sprintf(`{"accountId":"abc","displayName":"%s","emailAddress":"%s"}`, displayName, email)
}
