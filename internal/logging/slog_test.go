package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSlogTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(newSlogHandler(&buf, slog.LevelDebug, false))), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newSlogTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, s := range []string{
		"level=DEBUG msg=dbg a=1",
		"level=INFO msg=inf b=2",
		"level=WARN msg=wrn c=3",
		"level=ERROR msg=err d=4",
	} {
		assert.Contains(t, out, s)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newSlogTestLogger(t)

	log.With("flow", "download", "short_id", "Ab3_x-9Q").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"msg=hello", "flow=download", "short_id=Ab3_x-9Q", "k=v"} {
		assert.Contains(t, out, s)
	}
}

func TestSlogLogger_NilContextAndLogger(t *testing.T) {
	log, buf := newSlogTestLogger(t)
	//nolint:staticcheck // nil context is tolerated on purpose
	log.Info(nil, "no ctx")
	assert.Contains(t, buf.String(), "msg=\"no ctx\"")

	NewSlogLogger(nil).Error(context.Background(), "dropped")
}

func TestRedaction(t *testing.T) {
	ctx := context.Background()

	slogLog, slogBuf := newSlogTestLogger(t)
	lrLog, lrBuf := newLogrusTestLogger(t)

	for _, l := range []Logger{slogLog, lrLog} {
		l.With("token", "eyJhbGciOi").Info(ctx, "authorized",
			"password", "CorrectHorse9!", "Key", "c2VjcmV0", "short_id", "Ab3_x-9Q")
	}

	for name, out := range map[string]string{"slog": slogBuf.String(), "logrus": lrBuf.String()} {
		assert.NotContains(t, out, "CorrectHorse9!", name)
		assert.NotContains(t, out, "c2VjcmV0", name)
		assert.Regexp(t, `password="?\[REDACTED\]`, out, name)
		assert.Contains(t, out, "short_id=Ab3_x-9Q", name)
	}
	// slog applies ReplaceAttr to With attributes too.
	assert.NotContains(t, slogBuf.String(), "eyJhbGciOi")
	assert.NotContains(t, lrBuf.String(), "eyJhbGciOi")
}
