package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reqIDKey struct{}

func requestID(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(reqIDKey{}).(string); ok {
		return slog.String("request_id", v), true
	}
	return slog.Attr{}, false
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json"}, &buf, requestID, nil)

	ctx := context.WithValue(context.Background(), reqIDKey{}, "01J0")
	log.With("component", "backoffice").DebugContext(ctx, "hello", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "01J0", rec["request_id"])
	assert.Equal(t, "backoffice", rec["component"])
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text"}, &buf)
	log.Info("skipped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).WithGroup("g").With("k", "v")
	log.Info("info")
	log.Error("error")

	assert.Contains(t, a.String(), "msg=info")
	assert.Contains(t, a.String(), "g.k=v")
	assert.NotContains(t, b.String(), "msg=info")
	assert.Contains(t, b.String(), "msg=error")
}

func TestNope(t *testing.T) {
	t.Parallel()
	assert.False(t, NewNope().Enabled(context.Background(), slog.LevelError))
	require.NoError(t, SentryFlush(0)(context.Background()))
}
