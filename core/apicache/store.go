package apicache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the capability set the loader pipeline needs from a response
// cache.
type Store interface {
	// Get returns the cached payload for key, or a miss. A miss is also
	// returned when caching is disabled, a refresh was forced, the entry
	// has expired, or the backing store failed.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set upserts the payload under key with the given TTL. Best-effort:
	// failures are logged, never returned.
	Set(ctx context.Context, key, source, endpoint string, payload []byte, statusCode int, ttl time.Duration)

	// CleanupExpired deletes expired rows and returns the number
	// deleted. A non-empty source restricts deletion to that vendor;
	// empty cleans all sources.
	CleanupExpired(ctx context.Context, source string) (int64, error)
}

// Options controls cache behaviour for one loader run.
type Options struct {
	// Disabled bypasses the cache entirely.
	Disabled bool
	// ForceRefresh makes every Get miss so payloads are refetched, while
	// Set still writes the fresh results back.
	ForceRefresh bool
}

// gormStore is the gorm-backed Store implementation.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
	opts   Options

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates a Store over the api_response_cache table.
func NewStore(db *gorm.DB, logger *zap.Logger, opts Options) Store {
	return &gormStore{
		db:     db,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.opts.Disabled || s.opts.ForceRefresh {
		return nil, false
	}

	var entry Entry
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			// Cache failures must never fail the caller's fetch.
			s.logger.Warn("cache lookup failed, treating as miss",
				zap.String("cache_key", key),
				zap.Error(err),
			)
		}
		return nil, false
	}

	if entry.Expired(s.now()) {
		return nil, false
	}

	return entry.ResponseData, true
}

func (s *gormStore) Set(ctx context.Context, key, source, endpoint string, payload []byte, statusCode int, ttl time.Duration) {
	if s.opts.Disabled {
		return
	}

	now := s.now()
	entry := Entry{
		CacheKey:     key,
		APISource:    source,
		EndpointURL:  endpoint,
		ResponseData: payload,
		StatusCode:   statusCode,
		CachedAt:     now,
		ExpiresAt:    now.Add(ttl),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"api_source", "endpoint_url", "response_data", "status_code", "cached_at", "expires_at",
		}),
	}).Create(&entry).Error
	if err != nil {
		s.logger.Warn("cache store failed, continuing without cache",
			zap.String("cache_key", key),
			zap.String("api_source", source),
			zap.Error(err),
		)
	}
}

func (s *gormStore) CleanupExpired(ctx context.Context, source string) (int64, error) {
	// An empty source means all vendors; Set never writes an empty tag,
	// so filtering on it would match nothing.
	q := s.db.WithContext(ctx).Where("expires_at < ?", s.now())
	if source != "" {
		q = q.Where("api_source = ?", source)
	}
	res := q.Delete(&Entry{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
