package adaptererr

import (
	"errors"
	"strings"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	t.Parallel()

	err := NewBadToolSpec("tools[0].name", "duplicate tool name", nil)
	if !Is(err, BadToolSpec) {
		t.Fatal("expected Is to match BadToolSpec")
	}
	if Is(err, Transport) {
		t.Fatal("did not expect Is to match Transport")
	}
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewTransport("connection reset", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestErrorStringIncludesPath(t *testing.T) {
	t.Parallel()

	err := NewBadChunk("choices[0].delta", "unrecognized chunk shape", nil)
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
	if !strings.Contains(msg, "choices[0].delta") {
		t.Fatalf("expected error message to include the path, got %q", msg)
	}
}
