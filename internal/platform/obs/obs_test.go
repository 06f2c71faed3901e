package obs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	ctx := WithRequestID(context.Background(), "abc")
	func() (err error) {
		defer Time(ctx, "orders.Save")(&err)
		return errors.New("disk full")
	}()

	entries := logs.FilterMessage("op failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 failure entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["op"] != "orders.Save" || fields["req_id"] != "abc" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestNewLoggerFileSink(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(LogConfig{Level: "debug", File: filepath.Join(dir, "logs", "svc.log")})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.Info("hello")
	_ = l.Sync()

	if _, err := NewLogger(LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
