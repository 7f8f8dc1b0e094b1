package deploy

// PathBuilder produces version-correct API paths for one base URL.
// It is a pure function of the cached detection result and must only be
// queried after Detect has populated the cache.
type PathBuilder struct {
	cache   *Cache
	baseURL string
}

// NewPathBuilder creates a path builder reading from the given cache.
func NewPathBuilder(cache *Cache, baseURL string) *PathBuilder {
	return &PathBuilder{cache: cache, baseURL: baseURL}
}

// Path prefixes an endpoint with the detected dialect's API base path.
// Returns ErrNotDetected when no detection result exists for the base URL.
func (b *PathBuilder) Path(endpoint string) (string, error) {
	info := b.cache.Info(b.baseURL)
	if info == nil {
		return "", ErrNotDetected
	}
	return info.APIPrefix + endpoint, nil
}

// Dialect returns the detected dialect, or empty before detection.
func (b *PathBuilder) Dialect() Dialect {
	info := b.cache.Info(b.baseURL)
	if info == nil {
		return ""
	}
	return info.Dialect
}
