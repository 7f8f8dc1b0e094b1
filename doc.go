// Package atlascore is a deployment-adaptive client core for Atlassian
// APIs. One code path serves both Cloud and Data Center instances: the
// dialect is detected once per base URL, cached, and used to pick API
// version prefixes, authentication shape, and content formats.
//
// The packages compose bottom-up:
//
//   - config: YAML config files with per-project and per-space defaults
//   - credentials: merged credential resolution with source tracking
//   - deploy: dialect detection, caching, and versioned path building
//   - http: the shared request executor with retry and typed errors
//   - document: markup, storage format, and ADF conversion
//   - query: JQL/CQL scope merging
//   - jira, confluence: the service clients
//   - clierr: presentation of API failures for command-line front ends
//
// This package ties them together into the resolve, detect, verify
// pipeline used by health checks.
package atlascore
