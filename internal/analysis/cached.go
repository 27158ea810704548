package analysis

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/horaculo/internal/database/repository"
	"github.com/jask/horaculo/internal/session"
)

// ResultCache stores backend payloads. *repository.CacheRepo satisfies it.
type ResultCache interface {
	Get(ctx context.Context, key string) (*repository.CachedResult, error)
	Put(ctx context.Context, c repository.CachedResult) error
}

// CachedFetcher serves recent results from the cache before asking next.
// Cache failures are logged and never fail a search.
type CachedFetcher struct {
	next   session.Fetcher
	cache  ResultCache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewCachedFetcher wraps next. A non-positive ttl disables the cache.
func NewCachedFetcher(next session.Fetcher, cache ResultCache, ttl time.Duration, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// NormalizeQuery is the form queries are cached and compared under.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// CacheKey identifies a (mode, query) pair.
func CacheKey(mode session.Mode, query string) string {
	sum := md5.Sum([]byte(string(mode) + "|" + NormalizeQuery(query)))
	return "horaculo:analysis:" + hex.EncodeToString(sum[:])
}

// FetchAnalysis implements session.Fetcher.
func (c *CachedFetcher) FetchAnalysis(ctx context.Context, query string, mode session.Mode) (session.ResultPayload, error) {
	if c.cache == nil || c.ttl <= 0 {
		return c.next.FetchAnalysis(ctx, query, mode)
	}
	key := CacheKey(mode, query)
	log := c.logger.With(zap.String("mode", string(mode)), zap.String("query", query))

	hit, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("cache lookup failed", zap.Error(err))
	case hit != nil && c.now().Sub(hit.CreatedAt) < c.ttl:
		p, perr := session.ParsePayload(hit.Payload)
		if perr == nil {
			log.Info("cache hit", zap.Time("created_at", hit.CreatedAt))
			return p, nil
		}
		log.Warn("cached payload unreadable", zap.Error(perr))
	}

	p, err := c.next.FetchAnalysis(ctx, query, mode)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		log.Warn("encode payload for cache", zap.Error(err))
		return p, nil
	}
	entry := repository.CachedResult{
		Key:       key,
		Mode:      string(mode),
		Query:     NormalizeQuery(query),
		Payload:   raw,
		CreatedAt: c.now().Truncate(time.Second),
	}
	if err := c.cache.Put(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn("cache store failed", zap.Error(err))
	}
	return p, nil
}
