package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		l, err := New(nil, "test")
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(&Config{Level: "verbose"}, "")
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("file output creates directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "nested", "server.log")
		l, err := New(&Config{Level: "debug", Format: "json", File: file}, "server")
		require.NoError(t, err)

		l.Info("hello")
		_ = l.Sync()

		_, err = os.Stat(filepath.Dir(file))
		assert.NoError(t, err)
	})
}
