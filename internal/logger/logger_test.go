package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func restore(t *testing.T) {
	t.Helper()
	original := log
	t.Cleanup(func() { Set(original) })
}

func TestInit(t *testing.T) {
	restore(t)

	t.Run("Production", func(t *testing.T) {
		Init(Options{Env: "production", Level: "info"})
		assert.NotNil(t, L())
		assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("Development defaults to warn", func(t *testing.T) {
		Init(Options{Env: "development"})
		assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
		assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Unknown level keeps default", func(t *testing.T) {
		Init(Options{Level: "chatty"})
		assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
		assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	})
}

func TestInit_File(t *testing.T) {
	restore(t)

	path := filepath.Join(t.TempDir(), "shopcli.log")
	Init(Options{Env: "production", Level: "debug", File: path})
	L().Info("catalog refreshed", zap.Int("products", 3))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog refreshed")
}

func TestL_LazyInit(t *testing.T) {
	restore(t)

	Set(nil)
	assert.NotNil(t, L())
}

func TestFromCtx(t *testing.T) {
	restore(t)

	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFrom(ctx))
	assert.Equal(t, "", RequestIDFrom(context.Background()))

	FromCtx(ctx).Info("with id")
	FromCtx(context.Background()).Info("without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
