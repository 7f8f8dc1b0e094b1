// Package credentials resolves API credentials from multiple sources.
//
// Each credential field (base URL, identity, secret) is resolved
// independently, taking the first non-empty value in strict priority order:
//
//  1. the external secret store (keyring, OAuth token source)
//  2. service-specific environment variables (JIRA_URL, JIRA_API_TOKEN, ...)
//  3. the service config file (~/.config/atlascore/jira.yaml)
//  4. the shared config file and ATLASSIAN_* environment variables
//
// Resolution never fails on missing fields; validity is a separate predicate
// checked by callers before use:
//
//	creds, err := resolver.Resolve(ctx, "jira")
//	if err != nil {
//		return err // config file unreadable or insecure
//	}
//	if !creds.Valid(credentials.ModeToken) {
//		return fmt.Errorf("missing: %v", creds.MissingFields(credentials.ModeToken))
//	}
package credentials
