// Package deploy detects which Atlassian deployment dialect a base URL
// serves and builds version-correct API paths for it.
//
// Detection issues one metadata probe per base URL and caches the result in
// an explicit Cache owned by the caller, so a multi-call invocation probes
// each instance exactly once. Deployment type is effectively static for a
// given install; long-running embedders can force a refresh.
package deploy
