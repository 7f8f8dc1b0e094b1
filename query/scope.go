// Package query composes JQL/CQL query strings.
package query

import (
	"regexp"
	"strings"
)

// Merge combines a configured default scope with a user query by boolean
// conjunction. With an empty scope the user query passes through unchanged.
// Neither string is validated; both are opaque to this package.
func Merge(userQuery, scope string) string {
	if strings.TrimSpace(scope) == "" {
		return userQuery
	}
	return "(" + scope + ") AND (" + userQuery + ")"
}

// advancedCQLPattern matches query functions that require the advanced
// search extension on Data Center installs. Cloud always supports them.
var advancedCQLPattern = regexp.MustCompile(
	`(?i)\b(currentUser|startOfDay|endOfDay|startOfWeek|endOfWeek|startOfMonth|endOfMonth|now|lastLogin)\s*\(`,
)

// UsesAdvancedCQL reports whether a query relies on syntax that needs the
// advanced-query extension. Used only to warn; never blocks a request.
func UsesAdvancedCQL(q string) bool {
	return advancedCQLPattern.MatchString(q)
}
