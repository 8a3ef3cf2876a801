package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat_ProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("production", "", &buf)

	log.Debug("hidden")
	log.Info("visible", "k", "v")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "visible", rec["msg"])
	assert.Equal(t, "v", rec["k"])
	assert.Regexp(t, `^logger_test\.go:\d+$`, rec["source"])
}

func TestNewWithFormat_DevelopmentTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("development", "", &buf)

	log.Debug("debug line")

	assert.Contains(t, buf.String(), "msg=\"debug line\"")
}

func TestWithContext_AddsRequestIDAndSymbol(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("development", "json", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = ContextWithSymbol(ctx, "BTC")
	log.WithContext(ctx).WithComponent("gateway").Info("priced")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "BTC", rec["symbol"])
	assert.Equal(t, "gateway", rec["component"])
}
