package period

import "context"

// SettingsRepository persists the raw string values backing the period
// engine's lists. Implementations own serialization of nothing beyond the
// opaque string; list encoding stays inside this package.
type SettingsRepository interface {
	// Get returns the raw value for a key, or "" when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set writes the full value for a key, creating it if absent.
	Set(ctx context.Context, key, value string) error

	// Update applies a read-modify-write of the full value under a
	// transactional lock, so two concurrent mutations of the same list
	// cannot lose writes. mutate receives the current value ("" when the
	// key is absent) and returns the replacement.
	Update(ctx context.Context, key string, mutate func(current string) (string, error)) error
}

// CoherencyNotifier is the cache-coherency collaborator invoked after any
// mutation through the period engine. Both hooks are optimizations, not
// correctness-critical: callers log failures and continue.
type CoherencyNotifier interface {
	// InvalidateReportCaches drops the fixed list of named report and
	// option caches derived from period settings.
	InvalidateReportCaches(ctx context.Context) error

	// BumpLookupVersion atomically increments the global lookup version
	// embedded in derived cache keys, implicitly invalidating every key
	// that carries it. Returns the new version.
	BumpLookupVersion(ctx context.Context) (int64, error)
}

// ReportCache stores derived read results under versioned keys. A bumped
// lookup version makes DerivedKey produce fresh keys, so stale entries are
// never served after a mutation. All methods are best-effort: callers fall
// back to the settings store when the cache errors.
type ReportCache interface {
	// DerivedKey builds the cache key for a prefix and parameters under
	// the current lookup version.
	DerivedKey(ctx context.Context, prefix string, params ...string) (string, error)

	// Fetch returns the cached value and whether the key was present.
	Fetch(ctx context.Context, key string) (string, bool, error)

	// Store writes a value under a derived key.
	Store(ctx context.Context, key, value string) error
}
