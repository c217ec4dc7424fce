package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// lookupVersionKey holds the global monotonic version embedded in derived
// cache keys. Incrementing it implicitly invalidates every key that carries
// it, without enumerating the keys.
const lookupVersionKey = "period:lookup_version"

// reportCacheTTL bounds how long a derived entry lives even if no mutation
// ever bumps the lookup version.
const reportCacheTTL = time.Hour

// DefaultReportCacheKeys is the fixed list of named report and option caches
// dropped after any period mutation.
var DefaultReportCacheKeys = []string{
	"report:customer_balances",
	"report:supplier_balances",
	"report:period_summary",
	"options:semester_periods",
}

// RedisCoherencyNotifier implements period.CoherencyNotifier over Redis.
// Version bumps use INCR, which is atomic on the server, so concurrent
// mutations can never lose an increment.
type RedisCoherencyNotifier struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	reportKeys []string
	versionKey string
	logger     *zap.Logger
}

// RedisCoherencyNotifierOption is a functional option for configuring the notifier
type RedisCoherencyNotifierOption func(*RedisCoherencyNotifier)

// WithReportCacheKeys overrides the fixed list of caches to invalidate
func WithReportCacheKeys(keys []string) RedisCoherencyNotifierOption {
	return func(n *RedisCoherencyNotifier) {
		n.reportKeys = keys
	}
}

// WithVersionKey overrides the Redis key holding the lookup version
func WithVersionKey(key string) RedisCoherencyNotifierOption {
	return func(n *RedisCoherencyNotifier) {
		n.versionKey = key
	}
}

// WithNotifierLogger sets the logger for the notifier
func WithNotifierLogger(logger *zap.Logger) RedisCoherencyNotifierOption {
	return func(n *RedisCoherencyNotifier) {
		n.logger = logger
	}
}

// NewRedisCoherencyNotifier creates a notifier with its own Redis client
func NewRedisCoherencyNotifier(cfg RedisConfig, opts ...RedisCoherencyNotifierOption) (*RedisCoherencyNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	notifier := newRedisCoherencyNotifier(client, opts...)
	notifier.ownsClient = true
	return notifier, nil
}

// NewRedisCoherencyNotifierWithClient creates a notifier over an existing
// client. The caller retains ownership of the client.
func NewRedisCoherencyNotifierWithClient(client *redis.Client, opts ...RedisCoherencyNotifierOption) *RedisCoherencyNotifier {
	return newRedisCoherencyNotifier(client, opts...)
}

func newRedisCoherencyNotifier(client *redis.Client, opts ...RedisCoherencyNotifierOption) *RedisCoherencyNotifier {
	notifier := &RedisCoherencyNotifier{
		client:     client,
		reportKeys: DefaultReportCacheKeys,
		versionKey: lookupVersionKey,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(notifier)
	}
	return notifier
}

// InvalidateReportCaches drops the fixed list of named report caches.
func (n *RedisCoherencyNotifier) InvalidateReportCaches(ctx context.Context) error {
	if len(n.reportKeys) == 0 {
		return nil
	}
	if err := n.client.Del(ctx, n.reportKeys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report caches: %w", err)
	}
	n.logger.Debug("invalidated report caches", zap.Int("keys", len(n.reportKeys)))
	return nil
}

// BumpLookupVersion atomically increments the lookup version and returns the
// new value.
func (n *RedisCoherencyNotifier) BumpLookupVersion(ctx context.Context) (int64, error) {
	version, err := n.client.Incr(ctx, n.versionKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump lookup version: %w", err)
	}
	return version, nil
}

// LookupVersion reads the current version without bumping it. A missing key
// reads as version 0.
func (n *RedisCoherencyNotifier) LookupVersion(ctx context.Context) (int64, error) {
	version, err := n.client.Get(ctx, n.versionKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// DerivedKey builds the versioned cache key for a prefix and parameters.
func (n *RedisCoherencyNotifier) DerivedKey(ctx context.Context, prefix string, params ...string) (string, error) {
	version, err := n.LookupVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read lookup version: %w", err)
	}
	return VersionedKey(prefix, version, params...), nil
}

// Fetch returns the cached value for a derived key. A missing key is not an
// error.
func (n *RedisCoherencyNotifier) Fetch(ctx context.Context, key string) (string, bool, error) {
	value, err := n.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch cache entry: %w", err)
	}
	return value, true, nil
}

// Store writes a value under a derived key with a bounded TTL.
func (n *RedisCoherencyNotifier) Store(ctx context.Context, key, value string) error {
	if err := n.client.Set(ctx, key, value, reportCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Close releases the Redis client if the notifier owns it.
func (n *RedisCoherencyNotifier) Close() error {
	if n.ownsClient {
		return n.client.Close()
	}
	return nil
}
