package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	return newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	}), aw
}

func closeWriter(t *testing.T, aw *asyncWriter) {
	t.Helper()
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "app")
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)
	closeWriter(t, aw)

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), buf.String())
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatJSON)
	ctx := WithRID(Background(), "rid-json")
	ctx = WithSessionID(ctx, "sess-1")

	log := slog.New(handler).With("component", "session")
	LogEvent(ctx, log, slog.LevelError, "session.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)
	closeWriter(t, aw)

	line := strings.TrimSpace(buf.String())
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"session"`, `"event":"session.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"session_id":"sess-1"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	for _, tc := range []struct {
		name     string
		format   logFormat
		want     string
		wantFull bool
	}{
		{name: "kv", format: formatKV, want: "rid=" + CompactRID("123:456:789")},
		{name: "json", format: formatJSON, want: `"rid":"` + CompactRID("123:456:789") + `"`, wantFull: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler, aw := newTestHandler(buf, tc.format)
			ctx := WithRID(Background(), "123:456:789")
			LogEvent(ctx, slog.New(handler), slog.LevelInfo, "rid.test", slog.String("status", "ok"))
			closeWriter(t, aw)

			line := buf.String()
			if !strings.Contains(line, tc.want) {
				t.Fatalf("expected %s in %s", tc.want, line)
			}
			if got := strings.Contains(line, "rid_full"); got != tc.wantFull {
				t.Fatalf("rid_full present = %v, want %v (%s)", got, tc.wantFull, line)
			}
		})
	}
}

func TestStructuredHandlerDurationsAndLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	log := slog.New(handler)
	log.Debug("dropped")
	LogEvent(Background(), log, slog.LevelWarn, "slow",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.String("outcome", "weird"),
	)
	closeWriter(t, aw)

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "dropped") {
		t.Fatalf("debug line should be filtered: %s", line)
	}
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("expected rounded duration_ms, got %s", line)
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome should be dropped: %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("default component missing: %s", line)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("35:36:-1"); got != "z.10.-1" {
		t.Fatalf("CompactRID = %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID should keep foreign ids, got %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
	if num, den := parseRatio("10"); num != 1 || den != 10 {
		t.Fatalf("parseRatio(10) = %d/%d", num, den)
	}
}
