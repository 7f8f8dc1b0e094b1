package confluence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/odyssey4me/atlascore/config"
	"github.com/odyssey4me/atlascore/credentials"
	"github.com/odyssey4me/atlascore/deploy"
	corehttp "github.com/odyssey4me/atlascore/http"
)

// ServiceName is the service identifier used in errors and warnings.
const ServiceName = "confluence"

const (
	cloudPrefix = "/wiki/rest/api"
	dcPrefix    = "/rest/api"
)

// Client is the Confluence API client.
type Client struct {
	exec      *corehttp.Executor
	detector  *deploy.Detector
	paths     *deploy.PathBuilder
	baseURL   string
	service   *config.Service
	errWriter io.Writer
}

// ClientConfig holds configuration for Client. Credentials is required and
// must carry a base URL. Cache may be shared with other clients targeting
// the same instances. Warnings go to ErrWriter, stderr when nil.
type ClientConfig struct {
	Credentials *credentials.Credentials
	Service     *config.Service
	Cache       *deploy.Cache
	HTTPClient  *http.Client
	MaxAttempts int
	RetryWait   time.Duration
	ErrWriter   io.Writer
}

// NewClient creates a Confluence client. Dialect detection runs lazily on
// the first call that needs a versioned path.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Credentials == nil {
		return nil, errors.New("confluence: credentials are required")
	}
	if cfg.Credentials.BaseURL == "" {
		return nil, errors.New("confluence: base URL is required")
	}

	cache := cfg.Cache
	if cache == nil {
		cache = deploy.NewCache()
	}
	errWriter := cfg.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}

	c := &Client{
		baseURL:   cfg.Credentials.BaseURL,
		service:   cfg.Service,
		errWriter: errWriter,
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
		Cache:           cache,
		Probe:           c.probe,
		CapabilityProbe: c.capabilityProbe,
		Prefixes: map[deploy.Dialect]string{
			deploy.DialectCloud:      cloudPrefix,
			deploy.DialectDataCenter: dcPrefix,
		},
	})
	c.paths = deploy.NewPathBuilder(cache, cfg.Credentials.BaseURL)

	return c, nil
}

// probe distinguishes the dialects by which prefix serves the space list.
// Confluence has no serverInfo endpoint, so the prefix itself is the probe.
func (c *Client) probe(ctx context.Context, _ string) (*deploy.Probe, error) {
	if err := c.exec.Get(ctx, cloudPrefix+"/space?limit=1", nil); err == nil {
		return &deploy.Probe{DeploymentType: "Cloud"}, nil
	}
	if err := c.exec.Get(ctx, dcPrefix+"/space?limit=1", nil); err != nil {
		return nil, err
	}
	return &deploy.Probe{DeploymentType: "Server"}, nil
}

// capabilityProbe checks whether advanced CQL functions work. Cloud always
// supports them; Data Center needs a plugin, so a trial query decides.
func (c *Client) capabilityProbe(ctx context.Context, baseURL string) (deploy.Capabilities, error) {
	info, err := c.detector.Detect(ctx, baseURL, false)
	if err != nil {
		return deploy.Capabilities{}, err
	}
	if info.Dialect == deploy.DialectCloud {
		return deploy.Capabilities{AdvancedCQL: true}, nil
	}

	trial := dcPrefix + "/search?limit=1&cql=" + url.QueryEscape("creator = currentUser()")
	if err := c.exec.Get(ctx, trial, nil); err != nil {
		if errors.Is(err, corehttp.ErrBadRequest) {
			return deploy.Capabilities{AdvancedCQL: false}, nil
		}
		return deploy.Capabilities{}, err
	}
	return deploy.Capabilities{AdvancedCQL: true}, nil
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

func (c *Client) dialect(ctx context.Context) (deploy.Dialect, error) {
	info, err := c.Detect(ctx)
	if err != nil {
		return "", err
	}
	return info.Dialect, nil
}

func (c *Client) warn(format string, args ...any) {
	fmt.Fprintf(c.errWriter, "Warning: "+format+"\n", args...)
}

// Check verifies connectivity and credentials with one read-only call.
func (c *Client) Check(ctx context.Context) (*User, error) {
	path, err := c.path(ctx, "/user/current")
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.exec.Get(ctx, path, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
