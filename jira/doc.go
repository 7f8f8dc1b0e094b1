// Package jira is the Jira service client. It resolves the deployment
// dialect once per base URL and routes every call through the versioned
// API prefix that dialect requires: /rest/api/3 on Cloud, /rest/api/2 on
// Data Center. Rich text fields are authored in markup and converted to
// the dialect's native format on the way out.
package jira
