package deploy

import (
	"context"
	"net/url"
	"strings"
)

// Probe is the result of one deployment metadata request. The service
// client supplies the request; the detector owns classification and caching.
type Probe struct {
	// DeploymentType is the raw deployment string reported by the server
	// metadata endpoint (e.g., "Cloud", "Server", "DataCenter").
	DeploymentType string
}

// ProbeFunc issues the service-specific metadata request.
type ProbeFunc func(ctx context.Context, baseURL string) (*Probe, error)

// CapabilityProbeFunc checks for optional server extensions.
type CapabilityProbeFunc func(ctx context.Context, baseURL string) (Capabilities, error)

// Detector classifies base URLs into deployment dialects, probing each
// at most once per cache.
type Detector struct {
	cache    *Cache
	probe    ProbeFunc
	capProbe CapabilityProbeFunc
	prefixes map[Dialect]string
}

// DetectorConfig holds configuration for Detector.
type DetectorConfig struct {
	// Cache stores detection results. Required.
	Cache *Cache

	// Probe issues the metadata request. Required.
	Probe ProbeFunc

	// CapabilityProbe checks for the advanced-query extension. Optional.
	CapabilityProbe CapabilityProbeFunc

	// Prefixes maps each dialect to its versioned API base path.
	Prefixes map[Dialect]string
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg DetectorConfig) *Detector {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache()
	}
	return &Detector{
		cache:    cache,
		probe:    cfg.Probe,
		capProbe: cfg.CapabilityProbe,
		prefixes: cfg.Prefixes,
	}
}

// Cache returns the detector's cache, for sharing with a PathBuilder.
func (d *Detector) Cache() *Cache {
	return d.cache
}

// Detect returns the deployment info for a base URL, probing on first use
// and answering from the cache afterwards. With forceRefresh the probe runs
// again and replaces the cached entry.
//
// When the probe fails but the hostname matches the SaaS domain pattern,
// the cloud dialect is assumed; otherwise the failure is fatal.
func (d *Detector) Detect(ctx context.Context, baseURL string, forceRefresh bool) (*Info, error) {
	if !forceRefresh {
		if info := d.cache.Info(baseURL); info != nil {
			return info, nil
		}
	}

	dialect, err := d.classify(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Dialect:   dialect,
		APIPrefix: d.prefixes[dialect],
	}
	d.cache.putInfo(baseURL, info)
	return info, nil
}

func (d *Detector) classify(ctx context.Context, baseURL string) (Dialect, error) {
	probe, err := d.probe(ctx, baseURL)
	if err != nil {
		if IsCloudHost(baseURL) {
			return DialectCloud, nil
		}
		return "", &DetectionError{Host: hostOf(baseURL), Err: err}
	}

	if strings.EqualFold(probe.DeploymentType, "cloud") {
		return DialectCloud, nil
	}
	return DialectDataCenter, nil
}

// Capabilities returns the optional-extension flags for a base URL, cached
// the same way as Detect. A probe failure here is not fatal; callers use the
// error to emit a warning at most.
func (d *Detector) Capabilities(ctx context.Context, baseURL string, forceRefresh bool) (Capabilities, error) {
	if !forceRefresh {
		if caps, ok := d.cache.capabilities(baseURL); ok {
			return caps, nil
		}
	}

	if d.capProbe == nil {
		return Capabilities{}, nil
	}

	caps, err := d.capProbe(ctx, baseURL)
	if err != nil {
		return Capabilities{}, err
	}
	d.cache.putCapabilities(baseURL, caps)
	return caps, nil
}

func hostOf(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}
