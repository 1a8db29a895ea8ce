package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/grade-calculator-api/pkg/errors"
	"github.com/noah-isme/grade-calculator-api/pkg/middleware/requestid"
)

// Outcomes of a result cache lookup.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

const defaultResultTTL = 10 * time.Minute

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CacheService memoises calculation results. A disabled or nil service behaves as a
// cache that never hits, and backend failures never reach the caller.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCacheService constructs a cache service. It is inert unless enabled and repo is
// non-nil.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if !enabled {
		repo = nil
	}
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger}
}

// Enabled indicates whether lookups reach a backend.
func (s *CacheService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Lookup decodes the entry for key into dest and reports whether it was found.
func (s *CacheService) Lookup(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	outcome := CacheHit
	if err := s.repo.Get(ctx, key, dest); err != nil {
		outcome = CacheMiss
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			outcome = CacheError
			s.warn(ctx, "result cache lookup failed", key, err)
		}
	}
	s.metrics.RecordCacheOperation(outcome, time.Since(start))
	return outcome == CacheHit
}

// Store saves value under key for the configured TTL.
func (s *CacheService) Store(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Set(ctx, key, value, s.ttl); err != nil {
		s.warn(ctx, "result cache store failed", key, err)
	}
}

func (s *CacheService) warn(ctx context.Context, msg, key string, err error) {
	fields := []zap.Field{zap.String("key", key), zap.Error(err)}
	if id := requestid.FromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	s.logger.Warn(msg, fields...)
}
