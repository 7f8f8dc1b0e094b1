package credentials

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/odyssey4me/atlascore/config"
)

// sharedEnvPrefix is the prefix of cross-service fallback variables.
const sharedEnvPrefix = "ATLASSIAN"

// Resolver merges credentials from the secret store, environment variables,
// and config files. Resolution is a pure read of external sources; it is
// repeated fresh on every invocation.
type Resolver struct {
	// Store is the external secret store. Optional.
	Store SecretStore

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// LoadConfig loads a service config file. Defaults to config.Load.
	LoadConfig func(service string) (*config.Service, error)

	// ErrWriter receives non-fatal warnings. Defaults to os.Stderr.
	ErrWriter io.Writer

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// Resolve builds the merged credentials for a service. Missing fields are
// left empty; only unreadable or insecure config files are errors.
func (r *Resolver) Resolve(ctx context.Context, service string) (*Credentials, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	load := r.LoadConfig
	if load == nil {
		load = config.Load
	}

	svcCfg, err := load(service)
	if err != nil {
		return nil, err
	}
	sharedCfg, err := load(config.SharedName)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{sources: make(map[Field]config.Source)}
	for _, field := range []Field{FieldURL, FieldIdentity, FieldSecret} {
		value, source := r.resolveField(ctx, service, field, getenv, svcCfg, sharedCfg)
		creds.sources[field] = source
		switch field {
		case FieldURL:
			creds.BaseURL = strings.TrimSuffix(value, "/")
		case FieldIdentity:
			creds.Identity = value
		case FieldSecret:
			creds.Secret = value
		}
	}

	return creds, nil
}

// resolveField consults the sources in strict priority order and returns
// the first non-empty value together with its source.
func (r *Resolver) resolveField(
	ctx context.Context,
	service string,
	field Field,
	getenv func(string) string,
	svcCfg, sharedCfg *config.Service,
) (string, config.Source) {
	if r.Store != nil {
		value, err := r.Store.Lookup(ctx, service, field)
		if err != nil {
			r.warn(fmt.Sprintf("secret store lookup for %s %s: %v", service, field, err))
		} else if value != "" {
			return value, config.SourceSecretStore
		}
	}

	prefix := strings.ToUpper(service)
	for _, name := range envNames(prefix, field) {
		if value := getenv(name); value != "" {
			return value, config.SourceEnv
		}
	}

	if value := fromConfig(svcCfg, field); value != "" {
		return value, config.SourceFile
	}

	if value := fromConfig(sharedCfg, field); value != "" {
		return value, config.SourceShared
	}
	for _, name := range envNames(sharedEnvPrefix, field) {
		if value := getenv(name); value != "" {
			return value, config.SourceShared
		}
	}

	return "", config.SourceUnset
}

// envNames returns the environment variable names for a field, most
// specific first.
func envNames(prefix string, field Field) []string {
	switch field {
	case FieldURL:
		return []string{prefix + "_URL", prefix + "_BASE_URL"}
	case FieldIdentity:
		return []string{prefix + "_EMAIL", prefix + "_USERNAME"}
	case FieldSecret:
		return []string{prefix + "_API_TOKEN", prefix + "_TOKEN", prefix + "_PASSWORD"}
	default:
		return nil
	}
}

// fromConfig reads a field from a parsed config file.
func fromConfig(cfg *config.Service, field Field) string {
	if cfg == nil {
		return ""
	}
	switch field {
	case FieldURL:
		return cfg.URL
	case FieldIdentity:
		if cfg.Email != "" {
			return cfg.Email
		}
		return cfg.Username
	case FieldSecret:
		if cfg.Token != "" {
			return cfg.Token
		}
		return cfg.Password
	default:
		return ""
	}
}

// warn records a non-fatal issue.
func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	w := r.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Warning: %s\n", msg)
}
