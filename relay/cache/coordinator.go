package cache

import (
	"context"
	"fmt"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	gocache "github.com/patrickmn/go-cache"

	"github.com/gamenight/planner-api/common/config"
	"github.com/gamenight/planner-api/monitor"
	"github.com/gamenight/planner-api/relay/adaptor/gemini"
	"github.com/gamenight/planner-api/relay/profile"
)

// Decision is the outcome of the cache coordination step. ContentToSend is
// always a complete, correct prompt; CacheName and CachedTokens are only set
// when an upstream cache entry backs the request.
type Decision struct {
	ContentToSend []gemini.Content
	CacheName     string
	// Key is the derived fingerprint the entry was resolved under; callers use
	// it to invalidate the local memo when upstream rejects the reference.
	Key          string
	CachedTokens int
}

// UsedCache reports whether the decision references a server-side cache entry.
func (d Decision) UsedCache() bool {
	return d.CacheName != ""
}

// Coordinator decides whether to reuse, create, or skip upstream cached
// content. Caching is a pure optimization: every failure path degrades to
// sending the full prompt inline, so correctness never depends on the cache
// service being reachable.
type Coordinator struct {
	client       gemini.Client
	minCacheable int
	ttl          time.Duration
	// memo remembers resolved cache entries so repeat requests skip the
	// upstream lookup round trip.
	memo *gocache.Cache
}

// NewCoordinator builds a coordinator from the process configuration.
func NewCoordinator(client gemini.Client) *Coordinator {
	ttl := time.Duration(config.CacheTTLSeconds) * time.Second
	return &Coordinator{
		client:       client,
		minCacheable: config.MinCacheableTokens,
		ttl:          ttl,
		memo:         gocache.New(ttl, 10*time.Minute),
	}
}

// NewCoordinatorWith builds a coordinator with explicit limits, mainly for
// tests.
func NewCoordinatorWith(client gemini.Client, minCacheable int, ttl time.Duration) *Coordinator {
	return &Coordinator{
		client:       client,
		minCacheable: minCacheable,
		ttl:          ttl,
		memo:         gocache.New(ttl, 10*time.Minute),
	}
}

// Decide implements the cache coordination algorithm. It never fails: any
// upstream error degrades to the inline prompt.
func (co *Coordinator) Decide(ctx context.Context, systemPrompt gemini.Content, history []gemini.Content, prof profile.ModelProfile, modelID string) Decision {
	lg := gmw.GetLogger(ctx).With(zap.String("model", modelID))
	inline := Decision{ContentToSend: append([]gemini.Content{systemPrompt}, history...)}

	if !prof.SupportsCaching {
		lg.Debug("model does not support caching")
		return inline
	}

	contentToCache := []gemini.Content{systemPrompt}
	cacheableTokens, err := co.client.CountTokens(ctx, prof.APIPath, contentToCache)
	if err != nil {
		lg.Warn("cache eligibility token count failed, proceeding without cache", zap.Error(err))
		monitor.RecordCacheEvent("degrade")
		return inline
	}
	if cacheableTokens < co.minCacheable {
		lg.Debug("cacheable content below minimum cache size",
			zap.Int("tokens", cacheableTokens),
			zap.Int("min_cacheable", co.minCacheable))
		return inline
	}

	key := DeriveKey(contentToCache, modelID)
	if entry, ok := co.memo.Get(key); ok {
		cc := entry.(*gemini.CachedContent)
		lg.Debug("using memoized cache entry", zap.String("cache_name", cc.Name))
		monitor.RecordCacheEvent("local_hit")
		return Decision{
			ContentToSend: history,
			CacheName:     cc.Name,
			Key:           key,
			CachedTokens:  cc.TokenCount(cacheableTokens),
		}
	}

	entry, err := co.client.GetCachedContent(ctx, key)
	switch {
	case err == nil:
		lg.Info("using existing cache entry",
			zap.String("cache_name", entry.Name),
			zap.Int("cached_tokens", entry.TokenCount(cacheableTokens)))
		monitor.RecordCacheEvent("hit")
		co.memo.Set(key, entry, gocache.DefaultExpiration)
		return Decision{
			ContentToSend: history,
			CacheName:     entry.Name,
			Key:           key,
			CachedTokens:  entry.TokenCount(cacheableTokens),
		}
	case gemini.IsNotFound(err):
		monitor.RecordCacheEvent("miss")
		created, createErr := co.client.CreateCachedContent(ctx, &gemini.CachedContent{
			Name:     key,
			Model:    prof.APIPath,
			Contents: contentToCache,
			TTL:      fmt.Sprintf("%ds", int(co.ttl.Seconds())),
		})
		if createErr != nil {
			lg.Warn("cache create failed, proceeding without cache", zap.Error(createErr))
			monitor.RecordCacheEvent("degrade")
			return inline
		}
		lg.Info("created cache entry",
			zap.String("cache_name", created.Name),
			zap.Int("cached_tokens", created.TokenCount(cacheableTokens)))
		monitor.RecordCacheEvent("create")
		co.memo.Set(key, created, gocache.DefaultExpiration)
		return Decision{
			ContentToSend: history,
			CacheName:     created.Name,
			Key:           key,
			CachedTokens:  created.TokenCount(cacheableTokens),
		}
	default:
		lg.Warn("cache lookup failed, proceeding without cache", zap.Error(err))
		monitor.RecordCacheEvent("degrade")
		return inline
	}
}

// Forget drops a memoized entry, e.g. after the upstream rejects a stale
// cache reference.
func (co *Coordinator) Forget(key string) {
	co.memo.Delete(key)
}
