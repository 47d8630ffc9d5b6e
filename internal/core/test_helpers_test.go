package core

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quantumassembler/internal/numeric"
	"quantumassembler/pkg/domain"
)

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	entries []logEntry
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *captureLogger) add(level, msg string, args []any) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) has(level, msg string) bool {
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

type stubShop struct {
	allow bool
	calls []string
}

func (s *stubShop) BuyItem(itemID string, tier decimal.Decimal, quantity int) bool {
	s.calls = append(s.calls, itemID+"@"+tier.String())
	return s.allow && quantity == 1
}

func (s *stubShop) CanAfford(string, decimal.Decimal, int) bool { return s.allow }

func newTestAssembler(t *testing.T, opts ...Option) *Assembler {
	t.Helper()
	a, err := NewAssembler(opts...)
	if err != nil {
		t.Fatalf("new assembler: %v", err)
	}
	return a
}

func mustSet(t *testing.T, a *Assembler, x, y int, kind CellType, tier int64, dir Direction) {
	t.Helper()
	if err := a.SetCell(context.Background(), x, y, kind, decimal.NewFromInt(tier), dir); err != nil {
		t.Fatalf("set cell %d,%d: %v", x, y, err)
	}
}

func dataOf(n int64) domain.DecimalData {
	return numeric.ToData(decimal.NewFromInt(n))
}
