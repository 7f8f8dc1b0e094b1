// Package confluence is the Confluence service client. Cloud instances
// serve the API under /wiki/rest/api and take page bodies as ADF; Data
// Center serves /rest/api and takes storage format. The dialect is probed
// once per base URL and cached; page bodies are authored in markup and
// converted on the way out.
package confluence
