package atlascore

import (
	"context"
	"fmt"
	"strings"

	"github.com/odyssey4me/atlascore/clierr"
	"github.com/odyssey4me/atlascore/config"
	"github.com/odyssey4me/atlascore/confluence"
	"github.com/odyssey4me/atlascore/credentials"
	"github.com/odyssey4me/atlascore/deploy"
	"github.com/odyssey4me/atlascore/jira"
)

// CheckResult reports the outcome of one service health check.
type CheckResult struct {
	Service string
	BaseURL string
	Dialect deploy.Dialect

	// User is the display name of the authenticated account.
	User string

	// SecretSource reports where the secret came from, for diagnosing
	// which of the layered sources won.
	SecretSource config.Source

	// Err is nil when the check passed. It is a *clierr.CLIError when the
	// failure came from the API.
	Err error
}

// OK reports whether the check passed.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// CheckJira resolves Jira credentials, detects the deployment dialect, and
// verifies them with one read-only call. The cache may be shared across
// checks; pass nil for a private one.
func CheckJira(ctx context.Context, resolver *credentials.Resolver, cache *deploy.Cache) CheckResult {
	return runCheck(ctx, resolver, jira.ServiceName, func(creds *credentials.Credentials) (string, deploy.Dialect, error) {
		client, err := jira.NewClient(jira.ClientConfig{Credentials: creds, Cache: cache})
		if err != nil {
			return "", "", err
		}
		me, err := client.Check(ctx)
		if err != nil {
			return "", "", err
		}
		info, err := client.Detect(ctx)
		if err != nil {
			return me.DisplayName, "", nil
		}
		return me.DisplayName, info.Dialect, nil
	})
}

// CheckConfluence is the Confluence counterpart of CheckJira.
func CheckConfluence(ctx context.Context, resolver *credentials.Resolver, cache *deploy.Cache) CheckResult {
	return runCheck(ctx, resolver, confluence.ServiceName, func(creds *credentials.Credentials) (string, deploy.Dialect, error) {
		client, err := confluence.NewClient(confluence.ClientConfig{Credentials: creds, Cache: cache})
		if err != nil {
			return "", "", err
		}
		user, err := client.Check(ctx)
		if err != nil {
			return "", "", err
		}
		info, err := client.Detect(ctx)
		if err != nil {
			return user.DisplayName, "", nil
		}
		return user.DisplayName, info.Dialect, nil
	})
}

// runCheck is the shared resolve, validate, call pipeline.
func runCheck(
	ctx context.Context,
	resolver *credentials.Resolver,
	service string,
	verify func(*credentials.Credentials) (string, deploy.Dialect, error),
) CheckResult {
	result := CheckResult{Service: service}

	creds, err := resolver.Resolve(ctx, service)
	if err != nil {
		result.Err = err
		return result
	}
	result.BaseURL = creds.BaseURL
	result.SecretSource = creds.Source(credentials.FieldSecret)

	if !creds.Valid(credentials.ModeToken) {
		prefix := strings.ToUpper(service)
		result.Err = fmt.Errorf("%s credentials incomplete, missing %v; set %s_URL and %s_API_TOKEN or the config file",
			service, creds.MissingFields(credentials.ModeToken), prefix, prefix)
		return result
	}

	user, dialect, err := verify(creds)
	if err != nil {
		result.Err = clierr.Wrap(service, err)
		return result
	}
	result.User = user
	result.Dialect = dialect
	return result
}
