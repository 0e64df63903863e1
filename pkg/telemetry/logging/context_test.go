package logging

import (
	"context"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID() on empty context = %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithSlot(ctx, "hook")
	ctx = WithLayoutID(ctx, "L9")

	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}
	if got := GetSlot(ctx); got != "hook" {
		t.Errorf("GetSlot() = %q, want %q", got, "hook")
	}
	if got := GetLayoutID(ctx); got != "L9" {
		t.Errorf("GetLayoutID() = %q, want %q", got, "L9")
	}

	if fields := extractContextFields(ctx); len(fields) != 3 {
		t.Errorf("extractContextFields() returned %d fields, want 3", len(fields))
	}
}
