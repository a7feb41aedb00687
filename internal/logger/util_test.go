package logger

import (
	"errors"
	"testing"
	"time"
)

func TestStatus(t *testing.T) {
	if got := Status(nil); got != "ok" {
		t.Fatalf("got %q", got)
	}
	if got := Status(errors.New("boom")); got != "error" {
		t.Fatalf("got %q", got)
	}
}

func TestRoundMS(t *testing.T) {
	if got := RoundMS(-time.Second); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := RoundMS(1499 * time.Microsecond); got != time.Millisecond {
		t.Fatalf("got %v", got)
	}
}

func TestSummarizeStrings(t *testing.T) {
	values := []string{"a", "b", "c"}

	joined, truncated := SummarizeStrings(values, 5)
	if joined != "a, b, c" || truncated {
		t.Fatalf("got %q truncated=%v", joined, truncated)
	}

	joined, truncated = SummarizeStrings(values, 2)
	if joined != "a, b" || !truncated {
		t.Fatalf("got %q truncated=%v", joined, truncated)
	}

	joined, truncated = SummarizeStrings(values, 0)
	if joined != "" || !truncated {
		t.Fatalf("got %q truncated=%v", joined, truncated)
	}
}
