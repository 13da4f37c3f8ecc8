package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/foodinsight/huginn/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Runner executes an ordered stage plan against a language model and an
// optional searcher. A Runner holds no per-run state and may be reused.
type Runner struct {
	lm        LanguageModel
	searcher  Searcher
	telemetry *telemetry.Telemetry
	logger    *log.Logger
	tracer    trace.Tracer
	newRunID  func() string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSearcher makes search available to stages that declare it.
func WithSearcher(s Searcher) RunnerOption {
	return func(r *Runner) { r.searcher = s }
}

// WithTelemetry records stage, search and run events.
func WithTelemetry(t *telemetry.Telemetry) RunnerOption {
	return func(r *Runner) { r.telemetry = t }
}

func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(gen func() string) RunnerOption {
	return func(r *Runner) {
		if gen != nil {
			r.newRunID = gen
		}
	}
}

// NewRunner builds a Runner. The language model is mandatory.
func NewRunner(lm LanguageModel, opts ...RunnerOption) (*Runner, error) {
	if lm == nil {
		return nil, ConfigurationError{Reason: "language model is not configured"}
	}
	r := &Runner{
		lm:       lm,
		logger:   log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags),
		tracer:   otel.Tracer("github.com/foodinsight/huginn/internal/pipeline"),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Validate checks a stage plan without calling any collaborator: at least
// one stage, unique ids, and upstream references that point to earlier stages.
func Validate(stages []Stage) error {
	if len(stages) == 0 {
		return ConfigurationError{Reason: "stage plan is empty"}
	}
	seen := make(map[string]struct{}, len(stages))
	for i, s := range stages {
		if s.id == "" {
			return ConfigurationError{Reason: fmt.Sprintf("stage %d was not built with NewStage", i)}
		}
		if _, dup := seen[s.id]; dup {
			return ConfigurationError{Reason: fmt.Sprintf("duplicate stage id %q", s.id)}
		}
		for _, up := range s.upstream {
			if _, ok := seen[up]; !ok {
				return ConfigurationError{Reason: fmt.Sprintf("stage %q: upstream %q is not an earlier stage", s.id, up)}
			}
		}
		seen[s.id] = struct{}{}
	}
	return nil
}

// Run executes stages strictly in order. Each stage receives the results of
// its declared upstream stages, in declared order, and the last stage's text
// is returned verbatim as the artifact. The first failure aborts the run with
// a RunFailedError naming the stage.
func (r *Runner) Run(ctx context.Context, topic string, stages []Stage) (Outcome, error) {
	if err := Validate(stages); err != nil {
		return Outcome{}, err
	}

	runID := r.newRunID()
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("huginn.run_id", runID),
		attribute.String("huginn.topic", topic),
		attribute.Int("huginn.stages", len(stages)),
	))
	defer span.End()

	r.logger.Printf("Run %s started: topic=%q stages=%d", runID, topic, len(stages))

	results := make(map[string]string, len(stages))
	out := Outcome{RunID: runID, Topic: topic, Results: make([]StageResult, 0, len(stages))}

	for _, stage := range stages {
		res, err := r.runStage(ctx, runID, topic, stage, results)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.recordRun(ctx, runID, topic, time.Since(start), err)
			r.logger.Printf("Run %s aborted at stage %s: %v", runID, stage.id, err)
			return Outcome{}, RunFailedError{RunID: runID, StageID: stage.id, Err: err}
		}
		results[stage.id] = res.Text
		out.Results = append(out.Results, res)
	}

	out.Artifact = out.Results[len(out.Results)-1].Text
	r.recordRun(ctx, runID, topic, time.Since(start), nil)
	r.logger.Printf("Run %s completed in %v", runID, time.Since(start))
	return out, nil
}

func (r *Runner) runStage(ctx context.Context, runID, topic string, stage Stage, results map[string]string) (StageResult, error) {
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}

	ctx, span := r.tracer.Start(ctx, "pipeline.stage", trace.WithAttributes(
		attribute.String("huginn.run_id", runID),
		attribute.String("huginn.stage", stage.id),
		attribute.String("huginn.search", stage.search.String()),
	))
	defer span.End()

	req := Request{
		StageID:        stage.id,
		Persona:        stage.persona,
		Instruction:    stage.resolve(topic),
		ExpectedOutput: stage.expectedOutput,
		Context:        make([]ContextEntry, 0, len(stage.upstream)),
	}
	for _, up := range stage.upstream {
		req.Context = append(req.Context, ContextEntry{StageID: up, Text: results[up]})
	}

	switch stage.search {
	case SearchRequired:
		if r.searcher == nil {
			err := CollaboratorUnavailableError{StageID: stage.id, Capability: "search"}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.recordStage(ctx, runID, stage, 0, false, err)
			return StageResult{}, err
		}
		req.Search = r.instrument(runID, stage.id)
	case SearchPreferred:
		if r.searcher == nil {
			r.logger.Printf("Stage %s: search not configured, continuing without it", stage.id)
		} else {
			req.Search = r.instrument(runID, stage.id)
		}
	}

	started := time.Now()
	text, err := r.lm.Generate(ctx, req)
	elapsed := time.Since(started)
	if err != nil {
		err = asCollaboratorFailure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.recordStage(ctx, runID, stage, elapsed, req.Search != nil, err)
		return StageResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}

	span.SetAttributes(attribute.Int("huginn.output_bytes", len(text)))
	r.recordStage(ctx, runID, stage, elapsed, req.Search != nil, nil)
	r.logger.Printf("Stage %s finished in %v (%d bytes)", stage.id, elapsed, len(text))
	return StageResult{StageID: stage.id, Text: text, Duration: elapsed}, nil
}

// instrument wraps the searcher so each call is traced and counted.
func (r *Runner) instrument(runID, stageID string) Searcher {
	return SearchFunc(func(ctx context.Context, query string) (string, error) {
		ctx, span := r.tracer.Start(ctx, "pipeline.search", trace.WithAttributes(
			attribute.String("huginn.stage", stageID),
			attribute.String("huginn.query", query),
		))
		defer span.End()

		started := time.Now()
		findings, err := r.searcher.Search(ctx, query)
		if err != nil {
			err = CollaboratorFailureError{Collaborator: "search", Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if r.telemetry != nil {
			r.telemetry.RecordSearchEvent(ctx, telemetry.SearchEvent{
				RunID:    runID,
				StageID:  stageID,
				Query:    query,
				Duration: time.Since(started),
				Success:  err == nil,
			})
		}
		return findings, err
	})
}

func (r *Runner) recordStage(ctx context.Context, runID string, stage Stage, d time.Duration, searched bool, err error) {
	if r.telemetry == nil {
		return
	}
	ev := telemetry.StageEvent{RunID: runID, StageID: stage.id, Duration: d, Success: err == nil, Searched: searched}
	if err != nil {
		ev.Error = err.Error()
	}
	r.telemetry.RecordStageEvent(ctx, ev)
}

func (r *Runner) recordRun(ctx context.Context, runID, topic string, d time.Duration, err error) {
	if r.telemetry == nil {
		return
	}
	ev := telemetry.RunEvent{RunID: runID, Topic: topic, Duration: d, Success: err == nil}
	if err != nil {
		ev.Error = err.Error()
	}
	r.telemetry.RecordRunEvent(ctx, ev)
}

// asCollaboratorFailure keeps typed collaborator errors and wraps anything
// else as a language model failure.
func asCollaboratorFailure(err error) error {
	var failure CollaboratorFailureError
	if errors.As(err, &failure) {
		return err
	}
	var unavailable CollaboratorUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return CollaboratorFailureError{Collaborator: "language model", Err: err}
}
