package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixReport      = "merkle:report:"
	keyPrefixSummary     = "merkle:summary:"
	keySchemaVersion     = "merkle:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Key set for listing operations (Redis doesn't support prefix iteration natively)
	keySetReports = "merkle:reports:index"

	defaultTimeout = 5 * time.Second
)

// RedisPersistence is a report store backed by Redis, suitable for sharing reports
// between several proof servers.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "team-a:" gives "team-a:merkle:report:0x..".
	KeyPrefix string
}

// NewRedisPersistence creates a new Redis-backed persistence layer.
func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis report store initialized",
		"address", cfg.Address,
		"db", cfg.DB,
		"key_prefix", cfg.KeyPrefix,
	)

	return rp, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisPersistence) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

// initSchema initializes or validates the schema version
func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}

	return nil
}

// SaveReport persists a report, its summary and the index entry in one transaction
func (r *RedisPersistence) SaveReport(rep *report.Report) error {
	if rep == nil {
		return fmt.Errorf("cannot save nil Report")
	}
	root, err := persistence.RootKey(rep.RootHex())
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	data, err := persistence.MarshalReport(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal Report: %w", err)
	}
	summary, err := persistence.MarshalReportSummary(persistence.Summarize(rep))
	if err != nil {
		return fmt.Errorf("failed to marshal ReportSummary: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.prefixKey(keyPrefixReport+root), data, 0)
	pipe.Set(ctx, r.prefixKey(keyPrefixSummary+root), summary, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetReports), root)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save Report: %w", err)
	}

	return nil
}

// LoadReport retrieves a report by root
func (r *RedisPersistence) LoadReport(root string) (*report.Report, error) {
	key, err := persistence.RootKey(root)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.prefixKey(keyPrefixReport+key)).Bytes()
	if err == redis.Nil {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load Report: %w", err)
	}

	rep, err := persistence.UnmarshalReport(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal Report: %w", err)
	}

	return rep, nil
}

// ListReports returns all report summaries sorted by creation time
func (r *RedisPersistence) ListReports() ([]*persistence.ReportSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	indexKey := r.prefixKey(keySetReports)

	roots, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list report roots: %w", err)
	}

	if len(roots) == 0 {
		return []*persistence.ReportSummary{}, nil
	}

	keys := make([]string, len(roots))
	for i, root := range roots {
		keys[i] = r.prefixKey(keyPrefixSummary + root)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report summaries: %w", err)
	}

	summaries := make([]*persistence.ReportSummary, 0, len(values))
	for i, val := range values {
		if val == nil {
			// Root was in index but the summary doesn't exist - clean up index
			r.client.SRem(ctx, indexKey, roots[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for ReportSummary", "key", keys[i])
			continue
		}

		summary, err := persistence.UnmarshalReportSummary([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal ReportSummary, skipping",
				"key", keys[i], "error", err)
			continue
		}

		summaries = append(summaries, summary)
	}

	persistence.SortSummaries(summaries)

	return summaries, nil
}

// DeleteReport removes a report, its summary and the index entry
func (r *RedisPersistence) DeleteReport(root string) error {
	key, err := persistence.RootKey(root)
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.prefixKey(keyPrefixReport+key), r.prefixKey(keyPrefixSummary+key))
	pipe.SRem(ctx, r.prefixKey(keySetReports), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete Report: %w", err)
	}

	return nil
}

// Close shuts down the persistence layer
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis report store closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return persistence.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}

	return nil
}

var _ persistence.IReportPersistence = (*RedisPersistence)(nil)
