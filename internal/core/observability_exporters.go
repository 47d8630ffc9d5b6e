package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder publishes operation latency and outcome counts.
type PrometheusRecorder struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the assembler operation metrics with reg.
// Registering twice against the same registry reuses the existing collectors.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quantum_assembler_operation_duration_seconds",
		Help:    "Duration of assembler operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quantum_assembler_operations_total",
		Help: "Assembler operations by outcome.",
	}, []string{"operation", "status"})

	var err error
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	if total, err = registerOrReuse(reg, total); err != nil {
		return nil, err
	}
	return &PrometheusRecorder{duration: duration, total: total}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.total.WithLabelValues(operation, status).Inc()
}

// RegisterResourceGauges exposes the current energy and instability totals.
func RegisterResourceGauges(reg prometheus.Registerer, energy, instability func() float64) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "quantum_assembler_energy_rate",
			Help: "Energy generated per second by the current grid.",
		}, energy),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "quantum_assembler_instability_rate",
			Help: "Instability generated per second by the current grid.",
		}, instability),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// SpanEntry is one finished span recorded by LogTracer.
type SpanEntry struct {
	Operation string
	Duration  time.Duration
	Err       error
	StartedAt time.Time
}

// LogTracer writes finished spans to a Logger at debug level and keeps the
// most recent ones for inspection.
type LogTracer struct {
	logger Logger
	clock  Clock
	limit  int

	mu      sync.Mutex
	entries []SpanEntry
}

// NewLogTracer returns a tracer retaining up to limit spans. A non-positive
// limit retains nothing.
func NewLogTracer(logger Logger, limit int) *LogTracer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &LogTracer{logger: logger, clock: systemClock{}, limit: limit}
}

// Entries returns a copy of the retained spans, oldest first.
func (t *LogTracer) Entries() []SpanEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SpanEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements Tracer.
func (t *LogTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &logSpan{tracer: t, operation: operation, started: t.clock.Now()}
}

type logSpan struct {
	tracer    *LogTracer
	operation string
	started   time.Time
}

func (s *logSpan) End(err error) {
	t := s.tracer
	entry := SpanEntry{
		Operation: s.operation,
		Duration:  t.clock.Now().Sub(s.started),
		Err:       err,
		StartedAt: s.started,
	}
	if err != nil {
		t.logger.Debug("span", "operation", entry.Operation, "duration", entry.Duration, "error", err)
	} else {
		t.logger.Debug("span", "operation", entry.Operation, "duration", entry.Duration)
	}
	if t.limit <= 0 {
		return
	}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.limit {
		t.entries = t.entries[len(t.entries)-t.limit:]
	}
	t.mu.Unlock()
}
