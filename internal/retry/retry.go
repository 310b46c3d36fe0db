package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Func defines the function signature for a retryable operation.
type Func func(ctx context.Context) error

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that Execute stops retrying immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Execute performs an operation with a retry mechanism.
func Execute(ctx context.Context, cfg *Config, logger *zap.Logger, op Func) error {
	// If no retry configuration is provided, just execute the operation
	if cfg == nil || !cfg.Enable {
		return op(ctx)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid retry configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	interval := cfg.Interval
	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == cfg.Attempts {
			break
		}

		logger.Warn("Attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("attempts", cfg.Attempts),
			zap.Duration("wait", interval),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		if cfg.Multiplier > 1 {
			interval = time.Duration(float64(interval) * cfg.Multiplier)
		}
		if cfg.MaxInterval > 0 && interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.Attempts, lastErr)
}
