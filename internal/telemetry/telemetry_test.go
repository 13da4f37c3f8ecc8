package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foodinsight/huginn/config"
)

func TestRecordEventsUpdatesMetrics(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), config.TelemetryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	tel.RecordStageEvent(ctx, StageEvent{RunID: "r1", StageID: "research", Duration: 2 * time.Second, Success: true, Searched: true})
	tel.RecordSearchEvent(ctx, SearchEvent{RunID: "r1", StageID: "research", Query: "pastel", Success: true})
	tel.RecordSearchEvent(ctx, SearchEvent{RunID: "r1", StageID: "research", Query: "coxinha", Success: true})
	tel.RecordStageEvent(ctx, StageEvent{RunID: "r1", StageID: "design", Duration: time.Second, Success: false, Error: "boom"})
	tel.RecordRunEvent(ctx, RunEvent{RunID: "r1", Success: false, Error: "boom"})

	m := tel.GetMetrics()
	if m.Runs != 1 || m.FailedRuns != 1 {
		t.Fatalf("expected 1 failed run, got runs=%d failed=%d", m.Runs, m.FailedRuns)
	}
	if m.StageRuns["research"] != 1 || m.StageFailures["design"] != 1 {
		t.Fatalf("unexpected stage counters: %+v", m)
	}
	if m.Searches["research"] != 2 {
		t.Fatalf("expected 2 searches, got %d", m.Searches["research"])
	}
	if m.StageDurations["research"] != 2*time.Second {
		t.Fatalf("unexpected research duration %v", m.StageDurations["research"])
	}
}

func TestShutdownWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huginn.prom")
	tel, err := NewTelemetry(context.Background(), config.TelemetryConfig{Enabled: true, MetricsFile: path, ServiceName: "huginn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tel.RecordRunEvent(context.Background(), RunEvent{RunID: "r1", Success: true})
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(body), `huginn_run_total{outcome="success"} 1`) {
		t.Fatalf("expected run counter in textfile, got:\n%s", body)
	}
}

func TestShutdownDisabledIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huginn.prom")
	tel, err := NewTelemetry(context.Background(), config.TelemetryConfig{MetricsFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no textfile when telemetry is disabled")
	}
}
