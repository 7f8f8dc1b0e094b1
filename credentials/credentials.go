package credentials

import (
	"encoding/base64"
	"net/http"

	"github.com/odyssey4me/atlascore/config"
)

// Field identifies one credential field.
type Field string

// Credential fields resolved per service.
const (
	// FieldURL is the base URL of the target instance.
	FieldURL Field = "url"

	// FieldIdentity is the account identifier (email or username).
	FieldIdentity Field = "identity"

	// FieldSecret is the API token or password.
	FieldSecret Field = "secret"
)

// Mode selects which credential combination must be complete.
type Mode string

// Authentication modes.
const (
	// ModeToken requires secret + url (Bearer or anonymous-identity token auth).
	ModeToken Mode = "token"

	// ModeBasic requires identity + secret + url.
	ModeBasic Mode = "basic"
)

// Credentials holds the merged credential fields for one service.
// Constructed fresh on every invocation; never persisted here.
type Credentials struct {
	// BaseURL is the instance base URL, without a trailing slash.
	BaseURL string

	// Identity is the account identifier (email for Cloud, username for DC).
	Identity string

	// Secret is the API token or password.
	Secret string

	sources map[Field]config.Source
}

// Source reports where a field's value came from.
func (c *Credentials) Source(field Field) config.Source {
	return c.sources[field]
}

// Valid reports whether the credential combination for the given mode is
// complete.
func (c *Credentials) Valid(mode Mode) bool {
	return len(c.MissingFields(mode)) == 0
}

// MissingFields names the fields the given mode requires but which resolved
// empty, for configuration error reporting.
func (c *Credentials) MissingFields(mode Mode) []Field {
	var missing []Field
	if c.BaseURL == "" {
		missing = append(missing, FieldURL)
	}
	if mode == ModeBasic && c.Identity == "" {
		missing = append(missing, FieldIdentity)
	}
	if c.Secret == "" {
		missing = append(missing, FieldSecret)
	}
	return missing
}

// Apply sets the Authorization header based on which fields are populated:
// Basic identity:secret when an identity is present, Bearer secret otherwise.
func (c *Credentials) Apply(req *http.Request) {
	switch {
	case c.Identity != "" && c.Secret != "":
		encoded := base64.StdEncoding.EncodeToString([]byte(c.Identity + ":" + c.Secret))
		req.Header.Set("Authorization", "Basic "+encoded)
	case c.Secret != "":
		req.Header.Set("Authorization", "Bearer "+c.Secret)
	}
}
