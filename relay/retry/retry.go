package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/gamenight/planner-api/common/config"
	"github.com/gamenight/planner-api/monitor"
)

// Policy bounds repeated upstream dispatch attempts with exponential backoff.
// It wraps only the dispatch call itself; token counting and cache
// coordination are never retried through it.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy returns the policy configured for the process.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: config.RetryAttempts,
		BaseDelay:   time.Duration(config.RetryBaseDelaySec) * time.Second,
		MaxDelay:    time.Duration(config.RetryMaxDelaySec) * time.Second,
	}
}

// Backoff returns the delay before the given attempt (1-based): no delay
// before the first attempt, then BaseDelay doubling per attempt, capped at
// MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt-2))
	if backoff > float64(p.MaxDelay) {
		backoff = float64(p.MaxDelay)
	}
	return time.Duration(backoff)
}

// Do runs op up to MaxAttempts times, sleeping the backoff schedule between
// attempts. A nil error stops immediately. An error for which retryable
// returns false is surfaced as-is without further attempts. After exhaustion
// the last error is wrapped and the failure logged with its attempt count.
func (p Policy) Do(ctx context.Context, lg glog.Logger, op func() error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if delay := p.Backoff(attempt); delay > 0 {
			monitor.RecordRetry()
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Wrap(ctx.Err(), "context canceled while waiting to retry")
			case <-timer.C:
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		lg.Warn("upstream attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(lastErr))
	}

	lg.Error("upstream call failed after all retries",
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
	return &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// ExhaustedError marks a dispatch that failed every permitted attempt. The
// orchestrator maps it to a service-unavailable response.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("upstream call failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
