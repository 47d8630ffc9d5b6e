package logs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	glogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "qa.log")
	logger, level := newWithConsole("qa", Config{Level: "info", File: file}, zapcore.AddSync(&console))

	logger.Debug("hidden")
	logger.Info("visible", zap.String("k", "v"))
	level.SetLevel(zapcore.DebugLevel)
	logger.Debug("now shown")
	_ = logger.Sync()

	out := console.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") || !strings.Contains(out, "now shown") {
		t.Fatalf("unexpected console output %q", out)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"visible"`) || !strings.Contains(string(raw), `"logger":"qa"`) {
		t.Fatalf("expected json line in file, got %q", raw)
	}
}

func TestCoreLoggerForwardsPairs(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	l := NewCoreLogger(zap.New(zcore))
	l.Debug("d", "x", 1)
	l.Info("i")
	l.Warn("w", "err", "boom")
	l.Error("e")
	if logs.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", logs.Len())
	}
	first := logs.All()[0]
	if first.Message != "d" || first.ContextMap()["x"] != int64(1) {
		t.Fatalf("unexpected entry %+v", first)
	}
	NewCoreLogger(nil).Info("ignored")
}

func TestGormLoggerTrace(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	g := NewGormLogger(zap.New(zcore), glogger.Warn, 10*time.Millisecond)
	fc := func() (string, int64) { return "SELECT 1", 1 }

	g.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	g.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	g.Trace(context.Background(), time.Now(), fc, glogger.ErrRecordNotFound)
	g.Info(context.Background(), "info hidden")
	g.Warn(context.Background(), "warned")

	msgs := make([]string, 0, logs.Len())
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	if strings.Join(msgs, ",") != "trace error,slow query,warned" {
		t.Fatalf("unexpected messages %v", msgs)
	}

	silent := g.LogMode(glogger.Silent)
	silent.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	if logs.Len() != 3 {
		t.Fatalf("silent mode should not log")
	}
	if g.level != glogger.Warn {
		t.Fatalf("LogMode must not mutate the receiver")
	}
}
