package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Format: "json", Output: &buf})

	log.Info("account created", String("account_id", "abc"), Err(errors.New("none")))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "account created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["account_id"])
	assert.Equal(t, "none", entry["error"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "loud", Output: &buf})

	log.Debug("hidden")
	assert.Zero(t, buf.Len())
	log.Info("visible")
	assert.NotZero(t, buf.Len())
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	log.WithContext(ctx).WithField("op", "list").Info("done")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "list", entry["op"])
}

func TestRequestIDFrom_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
}
