package telemetry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/foodinsight/huginn/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Telemetry records run, stage and search events for a single process run.
// Counters live in a private Prometheus registry which is written to a
// textfile on Shutdown; traces go to an OTLP collector when one is configured.
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger
	tp     *sdktrace.TracerProvider

	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec
	searchTotal   *prometheus.CounterVec
	runTotal      *prometheus.CounterVec

	mu      sync.Mutex
	metrics Metrics
}

// Metrics is a plain snapshot of what was recorded.
type Metrics struct {
	Runs           int64
	FailedRuns     int64
	StageRuns      map[string]int64
	StageFailures  map[string]int64
	StageDurations map[string]time.Duration
	Searches       map[string]int64
}

// RunEvent represents a complete pipeline run
type RunEvent struct {
	RunID    string
	Topic    string
	Duration time.Duration
	Success  bool
	Error    string
}

// StageEvent represents one stage execution
type StageEvent struct {
	RunID    string
	StageID  string
	Duration time.Duration
	Success  bool
	Error    string
	Searched bool
}

// SearchEvent represents one search call made on behalf of a stage
type SearchEvent struct {
	RunID    string
	StageID  string
	Query    string
	Duration time.Duration
	Success  bool
}

// NewTelemetry creates a telemetry instance. When telemetry is disabled every
// Record call only logs and Shutdown is a no-op.
func NewTelemetry(ctx context.Context, cfg config.TelemetryConfig) (*Telemetry, error) {
	t := &Telemetry{
		config:   cfg,
		logger:   log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		registry: prometheus.NewRegistry(),
		metrics: Metrics{
			StageRuns:      make(map[string]int64),
			StageFailures:  make(map[string]int64),
			StageDurations: make(map[string]time.Duration),
			Searches:       make(map[string]int64),
		},
	}
	t.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "huginn_stage_duration_seconds",
		Help:    "Wall-clock duration of a pipeline stage.",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"stage"})
	t.stageTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_stage_total",
		Help: "Stage executions by outcome.",
	}, []string{"stage", "outcome"})
	t.searchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_search_total",
		Help: "Search collaborator calls by stage and outcome.",
	}, []string{"stage", "outcome"})
	t.runTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "huginn_run_total",
		Help: "Pipeline runs by outcome.",
	}, []string{"outcome"})
	t.registry.MustRegister(t.stageDuration, t.stageTotal, t.searchTotal, t.runTotal)

	if cfg.Enabled && cfg.OTLPEndpoint != "" {
		tp, err := newTracerProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		t.tp = tp
		otel.SetTracerProvider(tp)
	}
	return t, nil
}

func newTracerProvider(ctx context.Context, cfg config.TelemetryConfig) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("service.namespace", "huginn"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("resource init: %w", err)
	}
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp init: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// RecordRunEvent records a finished run
func (t *Telemetry) RecordRunEvent(ctx context.Context, event RunEvent) {
	outcome := outcomeLabel(event.Success)
	t.runTotal.WithLabelValues(outcome).Inc()

	t.mu.Lock()
	t.metrics.Runs++
	if !event.Success {
		t.metrics.FailedRuns++
	}
	t.mu.Unlock()

	t.logger.Printf("Run Event: ID=%s, Topic=%q, Success=%t, Duration=%v, Error=%s",
		event.RunID, event.Topic, event.Success, event.Duration, event.Error)
}

// RecordStageEvent records a stage execution
func (t *Telemetry) RecordStageEvent(ctx context.Context, event StageEvent) {
	t.stageTotal.WithLabelValues(event.StageID, outcomeLabel(event.Success)).Inc()
	t.stageDuration.WithLabelValues(event.StageID).Observe(event.Duration.Seconds())

	t.mu.Lock()
	t.metrics.StageRuns[event.StageID]++
	if !event.Success {
		t.metrics.StageFailures[event.StageID]++
	}
	t.metrics.StageDurations[event.StageID] += event.Duration
	t.mu.Unlock()

	t.logger.Printf("Stage Event: Run=%s, Stage=%s, Success=%t, Duration=%v, Search=%t",
		event.RunID, event.StageID, event.Success, event.Duration, event.Searched)
}

// RecordSearchEvent records a search call
func (t *Telemetry) RecordSearchEvent(ctx context.Context, event SearchEvent) {
	t.searchTotal.WithLabelValues(event.StageID, outcomeLabel(event.Success)).Inc()

	t.mu.Lock()
	t.metrics.Searches[event.StageID]++
	t.mu.Unlock()

	t.logger.Printf("Search Event: Run=%s, Stage=%s, Query=%q, Success=%t, Duration=%v",
		event.RunID, event.StageID, event.Query, event.Success, event.Duration)
}

// GetMetrics returns a copy of the recorded metrics
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := Metrics{
		Runs:           t.metrics.Runs,
		FailedRuns:     t.metrics.FailedRuns,
		StageRuns:      make(map[string]int64, len(t.metrics.StageRuns)),
		StageFailures:  make(map[string]int64, len(t.metrics.StageFailures)),
		StageDurations: make(map[string]time.Duration, len(t.metrics.StageDurations)),
		Searches:       make(map[string]int64, len(t.metrics.Searches)),
	}
	for k, v := range t.metrics.StageRuns {
		out.StageRuns[k] = v
	}
	for k, v := range t.metrics.StageFailures {
		out.StageFailures[k] = v
	}
	for k, v := range t.metrics.StageDurations {
		out.StageDurations[k] = v
	}
	for k, v := range t.metrics.Searches {
		out.Searches[k] = v
	}
	return out
}

// Registry exposes the Prometheus registry backing the counters.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

// Shutdown writes the metrics textfile and flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || !t.config.Enabled {
		return nil
	}
	var err error
	if t.config.MetricsFile != "" {
		if e := prometheus.WriteToTextfile(t.config.MetricsFile, t.registry); e != nil {
			err = fmt.Errorf("metrics textfile: %w", e)
		} else {
			t.logger.Printf("Metrics written to %s", t.config.MetricsFile)
		}
	}
	if t.tp != nil {
		if e := t.tp.Shutdown(ctx); e != nil {
			if err != nil {
				err = fmt.Errorf("%v; trace shutdown: %w", err, e)
			} else {
				err = fmt.Errorf("trace shutdown: %w", e)
			}
		}
	}
	return err
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
