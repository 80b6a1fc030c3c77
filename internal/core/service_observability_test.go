package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
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

type captureTracer struct {
	started []string
	ended   []spanRecord
}

type spanRecord struct {
	op  string
	err error
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
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *captureLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

func TestServiceReportsOperationsToObservers(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	logger := &captureLogger{}
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	svc := NewService(mustBuild(t, momoaCravalho()),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithLogger(logger),
		WithClock(clock),
	)

	if _, err := svc.GetPerson(ctx, 1); err != nil {
		t.Fatalf("get person: %v", err)
	}
	if _, err := svc.SearchPeople(ctx, " "); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := svc.GetShortestPath(ctx, 1, 2); err != nil {
		t.Fatalf("path: %v", err)
	}

	if !metrics.has(OpGetPerson, true) || !metrics.has(OpSearchPeople, false) {
		t.Fatalf("unexpected metrics %+v", metrics.calls)
	}
	if !metrics.has(OpGetShortestPath, true) {
		t.Fatalf("no path is an answer, not a failure: %+v", metrics.calls)
	}
	for _, call := range metrics.calls {
		if call.duration != time.Millisecond {
			t.Fatalf("expected injected clock duration, got %v", call.duration)
		}
	}
	if len(tracer.started) != 3 || len(tracer.ended) != 3 {
		t.Fatalf("expected three spans, got %v / %v", tracer.started, tracer.ended)
	}
	if tracer.ended[1].op != OpSearchPeople || tracer.ended[1].err == nil {
		t.Fatalf("expected failed search span, got %+v", tracer.ended[1])
	}
	if !logger.has("debug", "query rejected") || !logger.has("debug", "query served") {
		t.Fatalf("unexpected log entries %+v", logger.entries)
	}
}

func TestServiceLogsUnexpectedFailuresAsWarnings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger := &captureLogger{}
	svc := NewService(mustBuild(t, extendedFamily()), WithLogger(logger))
	if _, err := svc.GetShortestPath(ctx, 14, 15); err == nil {
		t.Fatalf("expected cancellation error")
	}
	if !logger.has("warn", "query failed") {
		t.Fatalf("expected warning, got %+v", logger.entries)
	}
}

func TestServiceOptionsIgnoreNil(t *testing.T) {
	svc := NewService(nil, WithLogger(nil), WithMetricsRecorder(nil), WithTracer(nil), WithClock(nil))
	if _, err := svc.GetPerson(context.Background(), 1); err != nil {
		t.Fatalf("noop observers should not fail: %v", err)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc := NewService(mustBuild(t, momoaCravalho()), WithMetricsRecorder(rec))
	ctx := context.Background()
	_, _ = svc.GetPerson(ctx, 1)
	_, _ = svc.GetPerson(ctx, 2)
	_, _ = svc.GetPerson(ctx, -1)
	rec.Observe(ctx, "", true, time.Second)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues(OpGetPerson, "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues(OpGetPerson, "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.latency); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestJSONTracerWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	svc := NewService(mustBuild(t, momoaCravalho()), WithTracer(tracer))
	_, _ = svc.SearchPlaces(context.Background(), "")
	_, _ = svc.GetPerson(context.Background(), 3)

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != OpSearchPlaces || entries[0].Status != "error" || entries[0].Error == "" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Status != "success" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], fmt.Sprintf("%q", OpGetPerson)) {
		t.Fatalf("unexpected json lines %q", buf.String())
	}
	if got := NewJSONTracer(nil); len(got.Entries()) != 0 {
		t.Fatalf("expected empty tracer")
	}
}

func TestJSONTracerRetainsRecentSpans(t *testing.T) {
	tracer := NewJSONTracer(nil)
	svc := NewService(mustBuild(t, momoaCravalho()), WithTracer(tracer))
	ctx := context.Background()
	for i := 0; i < maxRetainedSpans; i++ {
		_, _ = svc.GetPerson(ctx, 1)
	}
	_, _ = svc.SearchPeople(ctx, "momoa")

	entries := tracer.Entries()
	if len(entries) != maxRetainedSpans {
		t.Fatalf("expected %d retained spans, got %d", maxRetainedSpans, len(entries))
	}
	if last := entries[len(entries)-1]; last.Operation != OpSearchPeople {
		t.Fatalf("expected newest span last, got %+v", last)
	}
}

func TestNoopObserversDoNotPanic(t *testing.T) {
	noopLogger{}.Debug("x")
	noopLogger{}.Info("x")
	noopLogger{}.Warn("x")
	noopLogger{}.Error("x")
	noopMetrics{}.Observe(context.Background(), "op", true, time.Second)
	_, span := noopTracer{}.Start(context.Background(), "op")
	span.End(nil)
}
