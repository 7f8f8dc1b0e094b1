// Package config loads per-service configuration files.
//
// Each service (jira, confluence) owns one YAML file under the user config
// directory, e.g. ~/.config/atlascore/jira.yaml:
//
//	url: https://your-domain.atlassian.net
//	email: you@example.com
//	token: your-api-token
//	defaults:
//	  scope: project = DEV
//	  max_results: 50
//	  fields: [summary, status]
//	overrides:
//	  OPS:
//	    scope: project = OPS AND resolution = Unresolved
//
// An optional shared file (atlassian.yaml) in the same directory provides
// cross-service fallback values. Files carrying secrets must be readable by
// the owner only; Load rejects group- or world-accessible files.
package config
