package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExecute(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := &Config{Enable: true, Attempts: 3, Interval: time.Millisecond, Multiplier: 2}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := Execute(context.Background(), cfg, logger, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("remote hung up")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := Execute(context.Background(), cfg, logger, func(ctx context.Context) error {
			calls++
			return boom
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("rejected")
		err := Execute(context.Background(), cfg, logger, func(ctx context.Context) error {
			calls++
			return Permanent(boom)
		})
		assert.Equal(t, boom, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("disabled runs once", func(t *testing.T) {
		calls := 0
		_ = Execute(context.Background(), &Config{}, logger, func(ctx context.Context) error {
			calls++
			return errors.New("x")
		})
		assert.Equal(t, 1, calls)
	})
}
