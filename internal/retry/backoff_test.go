package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testLog = zerolog.Nop()

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxRetries != 2 {
		t.Errorf("Expected MaxRetries=2, got %d", cfg.MaxRetries)
	}
	if cfg.BaseDelay != time.Second {
		t.Errorf("Expected BaseDelay=1s, got %v", cfg.BaseDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("Expected MaxDelay=30s, got %v", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Expected Multiplier=2.0, got %f", cfg.Multiplier)
	}
	if !cfg.Jitter {
		t.Error("Expected Jitter=true")
	}
}

func TestDo_Success(t *testing.T) {
	cfg := Config{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false, // Disable jitter for predictable testing
	}

	result := Do(context.Background(), cfg, testLog, func() error {
		return nil // Success on first attempt
	})

	if !result.Success {
		t.Error("Expected success=true")
	}
	if result.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", result.Attempts)
	}
	if result.LastError != nil {
		t.Errorf("Expected no error, got %v", result.LastError)
	}
}

func TestDo_EventualSuccess(t *testing.T) {
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
	}

	attempts := 0
	result := Do(context.Background(), cfg, testLog, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary failure")
		}
		return nil // Success on third attempt
	})

	if !result.Success {
		t.Error("Expected success=true")
	}
	if result.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", result.Attempts)
	}
	if result.Duration == 0 {
		t.Error("Expected non-zero duration")
	}
}

func TestDo_AllAttemptsFailure(t *testing.T) {
	cfg := Config{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
	}

	expectedError := errors.New("connection reset by peer")
	result := Do(context.Background(), cfg, testLog, func() error {
		return expectedError
	})

	if result.Success {
		t.Error("Expected success=false")
	}
	if result.Attempts != 3 { // MaxRetries + 1
		t.Errorf("Expected 3 attempts, got %d", result.Attempts)
	}
	if result.LastError != expectedError {
		t.Errorf("Expected last error to be %v, got %v", expectedError, result.LastError)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	cfg := Config{
		MaxRetries: 5,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
		Jitter:     false,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := Do(ctx, cfg, testLog, func() error {
		return errors.New("request timeout")
	})

	if result.Success {
		t.Error("Expected success=false due to context cancellation")
	}
	// Should fail quickly due to context timeout
	if result.Attempts > 2 {
		t.Errorf("Expected few attempts due to quick timeout, got %d", result.Attempts)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	cfg := Config{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
	}

	attempts := 0
	result := Do(context.Background(), cfg, testLog, func() error {
		attempts++
		return errors.New("HTTP 404 Not Found")
	})

	if result.Success {
		t.Error("Expected success=false")
	}
	if attempts != 1 {
		t.Errorf("Expected a permanent error to stop after 1 attempt, got %d", attempts)
	}
	if result.LastError == nil {
		t.Error("Expected LastError to be set")
	}
}

func TestBackoffDelay(t *testing.T) {
	cfg := Config{
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     false,
	}

	// Exponential growth
	if d := backoffDelay(cfg, 0); d != 1*time.Second {
		t.Errorf("Expected 1s, got %v", d)
	}
	if d := backoffDelay(cfg, 1); d != 2*time.Second {
		t.Errorf("Expected 2s, got %v", d)
	}
	if d := backoffDelay(cfg, 2); d != 4*time.Second {
		t.Errorf("Expected 4s, got %v", d)
	}

	// Max delay cap
	if d := backoffDelay(cfg, 10); d != 10*time.Second {
		t.Errorf("Expected 10s (capped), got %v", d)
	}
}

func TestBackoffDelay_WithJitter(t *testing.T) {
	cfg := Config{
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}

	delay1a := backoffDelay(cfg, 1)
	delay1b := backoffDelay(cfg, 1)
	delay1c := backoffDelay(cfg, 1)

	// Should be close to 2s but with some variation
	expectedBase := 2 * time.Second
	tolerance := 200 * time.Millisecond // 10% of 2s

	if abs(delay1a-expectedBase) > tolerance {
		t.Errorf("delay %v too far from expected %v", delay1a, expectedBase)
	}
	// At least one should differ (very high probability with jitter)
	if delay1a == delay1b && delay1b == delay1c {
		t.Error("Expected some variation with jitter enabled")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		errors.New("connection refused"),
		errors.New("connection timeout"),
		errors.New("temporary failure"),
		errors.New("HTTP 429 Too Many Requests"),
		errors.New("HTTP 502 Bad Gateway"),
		errors.New("HTTP 503 Service Unavailable"),
	}
	for _, err := range retryable {
		if !IsRetryable(err) {
			t.Errorf("Expected %v to be retryable", err)
		}
	}

	nonRetryable := []error{
		errors.New("invalid input"),
		errors.New("permission denied"),
		errors.New("HTTP 400 Bad Request"),
		errors.New("HTTP 401 Unauthorized"),
		errors.New("HTTP 404 Not Found"),
	}
	for _, err := range nonRetryable {
		if IsRetryable(err) {
			t.Errorf("Expected %v to NOT be retryable", err)
		}
	}

	if IsRetryable(nil) {
		t.Error("Expected nil error to NOT be retryable")
	}
}

// Helper to calculate absolute difference between durations
func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
