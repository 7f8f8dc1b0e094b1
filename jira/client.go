package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/odyssey4me/atlascore/config"
	"github.com/odyssey4me/atlascore/credentials"
	"github.com/odyssey4me/atlascore/deploy"
	"github.com/odyssey4me/atlascore/document"
	corehttp "github.com/odyssey4me/atlascore/http"
)

// ServiceName is the service identifier used in errors and warnings.
const ServiceName = "jira"

const (
	cloudPrefix = "/rest/api/3"
	dcPrefix    = "/rest/api/2"

	// probeEndpoint exists on both dialects and reports deploymentType.
	probeEndpoint = "/rest/api/2/serverInfo"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// ValidateIssueKey checks that a key has the PROJECT-123 shape before it is
// interpolated into a request path.
func ValidateIssueKey(key string) error {
	if !issueKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid issue key %q, expected a key like DEV-123", key)
	}
	return nil
}

// Client is the Jira API client.
type Client struct {
	exec     *corehttp.Executor
	detector *deploy.Detector
	paths    *deploy.PathBuilder
	baseURL  string
	service  *config.Service
}

// ClientConfig holds configuration for Client. Credentials is required and
// must carry a base URL. Cache may be shared with other clients targeting
// the same instances; when nil a private cache is used.
type ClientConfig struct {
	Credentials *credentials.Credentials
	Service     *config.Service
	Cache       *deploy.Cache
	HTTPClient  *http.Client
	MaxAttempts int
	RetryWait   time.Duration
}

// NewClient creates a Jira client. No network traffic happens here; dialect
// detection runs lazily on the first call that needs a versioned path.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Credentials == nil {
		return nil, errors.New("jira: credentials are required")
	}
	if cfg.Credentials.BaseURL == "" {
		return nil, errors.New("jira: base URL is required")
	}

	cache := cfg.Cache
	if cache == nil {
		cache = deploy.NewCache()
	}

	c := &Client{
		baseURL: cfg.Credentials.BaseURL,
		service: cfg.Service,
	}
	c.exec = corehttp.NewExecutor(corehttp.ExecutorConfig{
		Client:        cfg.HTTPClient,
		BaseURL:       cfg.Credentials.BaseURL,
		ServiceName:   ServiceName,
		MaxAttempts:   cfg.MaxAttempts,
		RetryWait:     cfg.RetryWait,
		BeforeRequest: cfg.Credentials.Apply,
	})
	c.detector = deploy.NewDetector(deploy.DetectorConfig{
		Cache: cache,
		Probe: c.probe,
		Prefixes: map[deploy.Dialect]string{
			deploy.DialectCloud:      cloudPrefix,
			deploy.DialectDataCenter: dcPrefix,
		},
	})
	c.paths = deploy.NewPathBuilder(cache, cfg.Credentials.BaseURL)

	return c, nil
}

func (c *Client) probe(ctx context.Context, _ string) (*deploy.Probe, error) {
	var info struct {
		DeploymentType string `json:"deploymentType"`
	}
	if err := c.exec.Get(ctx, probeEndpoint, &info); err != nil {
		return nil, err
	}
	return &deploy.Probe{DeploymentType: info.DeploymentType}, nil
}

// Detect resolves the deployment dialect for this client's base URL,
// probing at most once per cache entry.
func (c *Client) Detect(ctx context.Context) (*deploy.Info, error) {
	return c.detector.Detect(ctx, c.baseURL, false)
}

// Redetect forces a fresh probe, replacing any cached dialect.
func (c *Client) Redetect(ctx context.Context) (*deploy.Info, error) {
	return c.detector.Detect(ctx, c.baseURL, true)
}

// path prefixes an endpoint with the dialect's API version, detecting the
// dialect first if this is the first versioned call.
func (c *Client) path(ctx context.Context, endpoint string) (string, error) {
	p, err := c.paths.Path(endpoint)
	if errors.Is(err, deploy.ErrNotDetected) {
		if _, derr := c.Detect(ctx); derr != nil {
			return "", derr
		}
		return c.paths.Path(endpoint)
	}
	return p, err
}

// dialect returns the detected dialect, detecting on first use.
func (c *Client) dialect(ctx context.Context) (deploy.Dialect, error) {
	info, err := c.Detect(ctx)
	if err != nil {
		return "", err
	}
	return info.Dialect, nil
}

// richText renders authored markup as the rich text value the detected
// dialect expects: an ADF document on Cloud, the markup string itself on
// Data Center.
func (c *Client) richText(ctx context.Context, markup string) (any, error) {
	dialect, err := c.dialect(ctx)
	if err != nil {
		return nil, err
	}
	if dialect == deploy.DialectCloud {
		return document.ToADF(document.ParseMarkup(markup)), nil
	}
	return markup, nil
}

// Check verifies connectivity and credentials with one read-only call.
func (c *Client) Check(ctx context.Context) (*Myself, error) {
	path, err := c.path(ctx, "/myself")
	if err != nil {
		return nil, err
	}
	var me Myself
	if err := c.exec.Get(ctx, path, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
