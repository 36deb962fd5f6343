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

func TestCtxAttrsReachRecords(t *testing.T) {
	var buf bytes.Buffer
	l := New("json", &buf)

	ctx := Ctx(context.Background(), slog.String("method", "GET"))
	ctx = Ctx(ctx, slog.String("path", "/api/posts"))
	l.InfoContext(ctx, "request completed")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/api/posts", record["path"])
}

func TestBareContextLogsWithoutAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := New("json", &buf)

	l.InfoContext(context.Background(), "no attrs attached")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "no attrs attached", record["msg"])
	assert.NotContains(t, record, "method")
}
