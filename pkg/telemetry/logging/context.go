package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SlotKey is the context key for the slot being rendered.
	SlotKey contextKey = "slot"

	// LayoutIDKey is the context key for the layout being handled.
	LayoutIDKey contextKey = "layout_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// WithSlot adds a slot name to the context.
func WithSlot(ctx context.Context, slot string) context.Context {
	return context.WithValue(ctx, SlotKey, slot)
}

// GetSlot retrieves the slot name from the context.
func GetSlot(ctx context.Context) string {
	return stringValue(ctx, SlotKey)
}

// WithLayoutID adds a layout ID to the context.
func WithLayoutID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, LayoutIDKey, id)
}

// GetLayoutID retrieves the layout ID from the context.
func GetLayoutID(ctx context.Context) string {
	return stringValue(ctx, LayoutIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr

	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, slog.String(string(RequestIDKey), id))
	}
	if slot := GetSlot(ctx); slot != "" {
		fields = append(fields, slog.String(string(SlotKey), slot))
	}
	if id := GetLayoutID(ctx); id != "" {
		fields = append(fields, slog.String(string(LayoutIDKey), id))
	}

	return fields
}
