package config

import (
	"strings"

	"github.com/gamenight/planner-api/common/env"
)

var (
	// GeminiAPIKey authenticates every call to the Gemini generative language API.
	// The server refuses to start without it.
	GeminiAPIKey = strings.TrimSpace(env.String("GEMINI_API_KEY", ""))
	// GeminiBaseURL overrides the upstream API endpoint, mostly for tests and proxies.
	GeminiBaseURL = strings.TrimSpace(env.String("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"))
	// GeminiVersion selects the Gemini REST API version segment.
	GeminiVersion = env.String("GEMINI_VERSION", "v1beta")

	// AllowedOrigins lists the cross-origin clients permitted by the CORS middleware (comma-separated).
	AllowedOrigins = func() []string {
		raw := env.String("ALLOWED_ORIGINS", "")
		var origins []string
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		return origins
	}()

	// RateLimitNum caps how many plan requests a single client may issue per window.
	RateLimitNum = env.Int("RATE_LIMIT_NUM", 15)
	// RateLimitWindowSec is the rate limit window length in seconds.
	RateLimitWindowSec = env.Int("RATE_LIMIT_WINDOW", 60)

	// CacheTTLSeconds is the time-to-live requested when creating upstream cached content.
	CacheTTLSeconds = env.Int("CACHE_TTL_SECONDS", 3600)
	// MinCacheableTokens is the minimum token count before content is worth caching upstream.
	MinCacheableTokens = env.Int("MIN_CACHEABLE_TOKENS", 32768)

	// DefaultInputTokenLimit is the context window applied to models missing an explicit limit.
	DefaultInputTokenLimit = env.Int("DEFAULT_INPUT_LIMIT", 30000)

	// UpstreamTimeoutSec bounds a single upstream HTTP attempt (seconds). Streaming
	// requests only apply it to connection establishment.
	UpstreamTimeoutSec = env.Int("UPSTREAM_TIMEOUT", 120)

	// RetryAttempts is the total number of upstream dispatch attempts before giving up.
	RetryAttempts = env.Int("RETRY_ATTEMPTS", 3)
	// RetryBaseDelaySec is the initial backoff delay between dispatch attempts (seconds).
	RetryBaseDelaySec = env.Int("RETRY_BASE_DELAY", 2)
	// RetryMaxDelaySec caps the backoff delay between dispatch attempts (seconds).
	RetryMaxDelaySec = env.Int("RETRY_MAX_DELAY", 10)

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// ApproximateTokenEnabled replaces the local tiktoken estimate with a cheap
	// character-ratio approximation in the degraded usage-accounting path.
	ApproximateTokenEnabled = env.Bool("APPROXIMATE_TOKEN", false)
	// ApproximateTokenRatio is the tokens-per-character ratio used when
	// APPROXIMATE_TOKEN is enabled.
	ApproximateTokenRatio = env.Float64("APPROXIMATE_TOKEN_RATIO", 0.38)

	// RedisConnString enables the Redis-backed rate limiter when set.
	RedisConnString = env.String("REDIS_CONN_STRING", "")
	// RedisPassword authenticates the Redis connection in cluster mode.
	RedisPassword = env.String("REDIS_PASSWORD", "")
	// RedisMasterName switches the Redis client into sentinel/cluster mode when set.
	RedisMasterName = env.String("REDIS_MASTER_NAME", "")

	// EnablePrometheusMetrics exposes the /metrics endpoint for Prometheus scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)

	// ShutdownTimeoutSec specifies the graceful shutdown timeout (seconds) for the
	// HTTP server and in-flight streaming responses.
	ShutdownTimeoutSec = env.Int("SHUTDOWN_TIMEOUT", 30)

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// OnlyOneLogFile merges all logs into a single file when true.
	OnlyOneLogFile = env.Bool("ONLY_ONE_LOG_FILE", false)
)
