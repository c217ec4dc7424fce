package cache

import (
	"context"
	"sync"
)

// InMemoryCoherencyNotifier implements period.CoherencyNotifier and
// period.ReportCache with local state. Used in tests and single-process
// development setups where Redis is not available.
type InMemoryCoherencyNotifier struct {
	mu            sync.Mutex
	version       int64
	invalidations int
	entries       map[string]string
}

// NewInMemoryCoherencyNotifier creates a new InMemoryCoherencyNotifier
func NewInMemoryCoherencyNotifier() *InMemoryCoherencyNotifier {
	return &InMemoryCoherencyNotifier{entries: make(map[string]string)}
}

// InvalidateReportCaches records the invalidation and drops stored entries.
func (n *InMemoryCoherencyNotifier) InvalidateReportCaches(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidations++
	n.entries = make(map[string]string)
	return nil
}

// BumpLookupVersion increments the local version under a lock.
func (n *InMemoryCoherencyNotifier) BumpLookupVersion(context.Context) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.version++
	return n.version, nil
}

// LookupVersion returns the current version.
func (n *InMemoryCoherencyNotifier) LookupVersion() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.version
}

// Invalidations returns how many times the report caches were dropped.
func (n *InMemoryCoherencyNotifier) Invalidations() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.invalidations
}

// DerivedKey builds the versioned cache key for a prefix and parameters.
func (n *InMemoryCoherencyNotifier) DerivedKey(_ context.Context, prefix string, params ...string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return VersionedKey(prefix, n.version, params...), nil
}

// Fetch returns the stored value for a derived key.
func (n *InMemoryCoherencyNotifier) Fetch(_ context.Context, key string) (string, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	value, ok := n.entries[key]
	return value, ok, nil
}

// Store writes a value under a derived key.
func (n *InMemoryCoherencyNotifier) Store(_ context.Context, key, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries[key] = value
	return nil
}
