package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config configures retry behavior with exponential backoff.
type Config struct {
	MaxRetries int           // maximum retry attempts after the first try
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // ceiling on any single delay
	Multiplier float64       // exponential growth factor
	Jitter     bool          // add +/-10% random jitter
}

// DefaultConfig returns sensible defaults for idempotent API reads.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Result describes what happened across all attempts.
type Result struct {
	Attempts  int
	Duration  time.Duration
	LastError error
	Success   bool
}

// Do executes op with exponential backoff until it succeeds, retries are
// exhausted, the error stops looking transient, or ctx is cancelled.
// Backoff delays respect ctx cancellation.
func Do(ctx context.Context, cfg Config, log zerolog.Logger, op func() error) Result {
	start := time.Now()
	res := Result{}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		res.Attempts = attempt + 1

		err := op()
		if err == nil {
			res.Success = true
			res.Duration = time.Since(start)
			return res
		}
		res.LastError = err

		if !IsRetryable(err) {
			log.Debug().Err(err).Msg("permanent failure; not retrying")
			break
		}
		if attempt >= cfg.MaxRetries {
			break
		}
		if ctx.Err() != nil {
			res.LastError = ctx.Err()
			break
		}

		delay := backoffDelay(cfg, attempt)
		log.Warn().
			Int("attempt", attempt+1).
			Int("max_attempts", cfg.MaxRetries+1).
			Dur("delay", delay).
			Err(err).
			Msg("request failed; retrying")

		select {
		case <-ctx.Done():
			res.LastError = ctx.Err()
			res.Duration = time.Since(start)
			return res
		case <-time.After(delay):
		}
	}

	res.Duration = time.Since(start)
	return res
}

// backoffDelay computes baseDelay * multiplier^attempt, capped at MaxDelay,
// with optional jitter to avoid thundering-herd retries.
func backoffDelay(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		jitterRange := delay * 0.1
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
		if delay < 0 {
			delay = float64(cfg.BaseDelay)
		}
	}
	return time.Duration(delay)
}

// IsRetryable reports whether an error looks transient enough to retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"429",
		"502",
		"503",
		"504",
		"no such host",
		"network unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
