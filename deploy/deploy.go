package deploy

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Dialect identifies a deployment variant of an Atlassian API.
type Dialect string

// Deployment dialects.
const (
	// DialectCloud is the SaaS deployment (*.atlassian.net).
	DialectCloud Dialect = "cloud"

	// DialectDataCenter is a self-hosted Data Center or Server deployment.
	DialectDataCenter Dialect = "datacenter"
)

// Capabilities reports optional server-side features detected separately
// from the dialect.
type Capabilities struct {
	// AdvancedCQL is true when the advanced-query extension is available.
	// Always true on Cloud; requires a plugin on Data Center.
	AdvancedCQL bool
}

// Info describes a detected deployment. Immutable once cached for a base URL
// within the process lifetime.
type Info struct {
	// Dialect is the detected deployment variant.
	Dialect Dialect

	// APIPrefix is the dialect's versioned API base path
	// (e.g., "/rest/api/3").
	APIPrefix string
}

// ErrNotDetected indicates a path was requested before detection ran for
// the base URL. The core never guesses a dialect.
var ErrNotDetected = errors.New("deployment not detected for base url")

// DetectionError indicates the deployment probe failed and no URL heuristic
// applied. Fatal to the invocation; not retried.
type DetectionError struct {
	// Host is the unreachable or ambiguous host.
	Host string

	// Err is the underlying probe failure.
	Err error
}

// Error implements the error interface.
func (e *DetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deployment detection failed for %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("deployment detection failed for %s", e.Host)
}

// Unwrap returns the underlying probe failure.
func (e *DetectionError) Unwrap() error {
	return e.Err
}

// Cache holds detection results keyed by base URL. It is created per
// invocation and injected into the Detector; entries never expire within
// the process (use force refresh in long-running contexts).
type Cache struct {
	mu    sync.RWMutex
	infos map[string]*Info
	caps  map[string]Capabilities
}

// NewCache creates an empty detection cache.
func NewCache() *Cache {
	return &Cache{
		infos: make(map[string]*Info),
		caps:  make(map[string]Capabilities),
	}
}

// Info returns the cached detection result for a base URL, or nil.
func (c *Cache) Info(baseURL string) *Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.infos[baseURL]
}

func (c *Cache) putInfo(baseURL string, info *Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos[baseURL] = info
}

func (c *Cache) capabilities(baseURL string) (Capabilities, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	caps, ok := c.caps[baseURL]
	return caps, ok
}

func (c *Cache) putCapabilities(baseURL string, caps Capabilities) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caps[baseURL] = caps
}

// Invalidate drops all cached results for a base URL.
func (c *Cache) Invalidate(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.infos, baseURL)
	delete(c.caps, baseURL)
}

// CloudHostSuffix is the SaaS domain suffix that implies the cloud dialect
// without a successful probe.
const CloudHostSuffix = ".atlassian.net"

// IsCloudHost reports whether a base URL's hostname matches the recognized
// SaaS domain pattern.
func IsCloudHost(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), CloudHostSuffix)
}
