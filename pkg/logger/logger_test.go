package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithContext_AttachesRequestScopedFields(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&buf, "debug"))
	defer SetDefault(prev)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "user-1")
	ctx = context.WithValue(ctx, ServiceKey, "api")

	DebugContext(ctx, "hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{
		"request_id": "req-1",
		"user_id":    "user-1",
		"service":    "api",
		"k":          "v",
		"msg":        "hello",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
	l.Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn should be logged at warn level")
	}
}
