package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologLogger_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", "two")
	log.Warn(ctx, "wrn", "err", errors.New("boom"))
	log.Error(ctx, "bad", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "dbg", lines[0]["message"])
	assert.EqualValues(t, 1, lines[0]["a"])

	assert.Equal(t, "two", lines[1]["b"])
	assert.Equal(t, "boom", lines[2]["err"])
	assert.Equal(t, "dangling", lines[3]["!BADKEY"])
}

func TestZerologLogger_WithAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)).With("module", "vault")

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "vault", lines[0]["module"])
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FormatJSON, `"msg":"hello"`},
		{FormatText, "msg=hello"},
		{FormatZerolog, `"message":"hello"`},
		{"", `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, tt.format, "info").Info(context.Background(), "hello")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, FormatText, "warn")
	log.Info(context.Background(), "quiet")
	log.Warn(context.Background(), "loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestZerologLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf))

	ctx := ContextWith(context.Background(), "request_id", "r-3")
	log.Info(ctx, "handled", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "r-3", lines[0]["request_id"])
	assert.Equal(t, "dangling", lines[0]["!BADKEY"])
}
