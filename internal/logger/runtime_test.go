package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()

	ctx = WithRID(ctx, "1:2:3")
	if got := RIDFrom(ctx); got != "1:2:3" {
		t.Fatalf("rid = %q", got)
	}

	ctx = WithUpdateMeta(ctx, 7, 42, -100)
	if UpdateIDFrom(ctx) != 7 || UserIDFrom(ctx) != 42 || ChatIDFrom(ctx) != -100 {
		t.Fatalf("meta = %d %d %d", UpdateIDFrom(ctx), UserIDFrom(ctx), ChatIDFrom(ctx))
	}

	ctx = WithHandler(ctx, "text")
	if got := HandlerFrom(ctx); got != "text" {
		t.Fatalf("handler = %q", got)
	}

	var nilCtx context.Context
	if RIDFrom(nilCtx) != "" || UserIDFrom(nilCtx) != 0 || HandlerFrom(nilCtx) != "" {
		t.Fatal("nil context must yield zero values")
	}
}

func TestLogEventCarriesContextMeta(t *testing.T) {
	var buf bytes.Buffer
	logg := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithRID(context.Background(), "7:-100:42")
	ctx = WithUpdateMeta(ctx, 7, 42, -100)
	ctx = WithHandler(ctx, "wizard_text")

	LogEvent(ctx, logg, slog.LevelInfo, "step.advance", slog.String("step", "photos"))

	line := buf.String()
	for _, want := range []string{
		"event=step.advance",
		"rid=7:-100:42",
		"handler=wizard_text",
		"update_id=7",
		"chat_id=-100",
		"user_id=42",
		"step=photos",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %q:\n%s", want, line)
		}
	}
}

func TestBuildRID(t *testing.T) {
	if got := BuildRID(10, -200, 30); got != "10:-200:30" {
		t.Fatalf("rid = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	in := "abc\x00def\tghi\njkl\x7f"
	want := "abcdef\tghi\njkl"
	if got := Sanitize(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("привет мир", 6); got != "привет" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("abc", 0); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
