package logger

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}

	ctx = WithRequestID(ctx, "01J9ZQ4M3X")
	if got := RequestIDFromContext(ctx); got != "01J9ZQ4M3X" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "01J9ZQ4M3X")
	}
}

func TestWithContext_RequestID(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	ctx := WithRequestID(context.Background(), "req-12345")
	l.With("component", "store").WithContext(ctx).Info("request sent")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-12345" {
		t.Errorf("request_id = %v, want req-12345", entry["request_id"])
	}
	if entry["component"] != "store" {
		t.Errorf("component = %v, want store", entry["component"])
	}
}

func TestWithContext_NoRequestID(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.WithContext(context.Background()).Info("no id")

	entry := decodeLine(t, buf)
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}
