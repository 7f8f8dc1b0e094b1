package credentials

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// SecretStore is the external credential store collaborator (keyring,
// OS secret service, OAuth token cache). It is the highest-priority source.
// Persistence mechanics are out of scope for this module.
type SecretStore interface {
	// Lookup returns the stored value for a credential field of a service.
	// An empty string with a nil error means the field is not stored.
	Lookup(ctx context.Context, service string, field Field) (string, error)
}

// TokenSourceStore adapts an oauth2.TokenSource into a SecretStore that
// serves the secret field. The browser-consent flow that produced the token
// source lives outside this module.
type TokenSourceStore struct {
	// Source yields the current access token.
	Source oauth2.TokenSource
}

// Lookup returns the access token for FieldSecret, and empty for other fields.
func (s *TokenSourceStore) Lookup(_ context.Context, _ string, field Field) (string, error) {
	if field != FieldSecret || s.Source == nil {
		return "", nil
	}
	token, err := s.Source.Token()
	if err != nil {
		return "", fmt.Errorf("oauth token source: %w", err)
	}
	return token.AccessToken, nil
}

// StaticStore is a SecretStore backed by an in-memory map, keyed by
// service then field. Useful for tests and embedding contexts.
type StaticStore struct {
	// Values maps service name to field values.
	Values map[string]map[Field]string
}

// Lookup returns the stored value, or empty when absent.
func (s *StaticStore) Lookup(_ context.Context, service string, field Field) (string, error) {
	return s.Values[service][field], nil
}
