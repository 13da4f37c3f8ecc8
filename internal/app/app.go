package app

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/foodinsight/huginn/config"
	"github.com/foodinsight/huginn/internal/listing"
	"github.com/foodinsight/huginn/internal/pipeline"
	"github.com/foodinsight/huginn/internal/storage"
	"github.com/foodinsight/huginn/internal/telemetry"
	"github.com/foodinsight/huginn/internal/topic"
	"github.com/foodinsight/huginn/provider"
	web_search "github.com/foodinsight/huginn/tools/web_search"
)

// App is one fully wired listing run.
type App struct {
	cfg      *config.Config
	logger   *log.Logger
	lm       pipeline.LanguageModel
	searcher pipeline.Searcher
	selector *topic.Selector
	stages   []pipeline.Stage
	runIDs   func() string
	now      func() time.Time

	lmSet, searcherSet bool
}

// Option customises an App built by New.
type Option func(*App)

// WithLanguageModel replaces the provider built from cfg.LLM. The credential
// check is skipped when a model is supplied.
func WithLanguageModel(lm pipeline.LanguageModel) Option {
	return func(a *App) { a.lm, a.lmSet = lm, true }
}

// WithSearcher replaces the configured searcher. nil disables search.
func WithSearcher(s pipeline.Searcher) Option {
	return func(a *App) { a.searcher, a.searcherSet = s, true }
}

// WithSelector replaces the selector built from cfg.Pipeline.Topics.
func WithSelector(s *topic.Selector) Option {
	return func(a *App) { a.selector = s }
}

// WithLogger sets the logger shared by the app and the runner.
func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithRunIDs overrides run id generation.
func WithRunIDs(gen func() string) Option {
	return func(a *App) { a.runIDs = gen }
}

// New builds every collaborator from cfg. It fails with a ConfigurationError
// before any network call when the language model credential is missing, the
// topic catalogue is empty or the stage plan is malformed. A missing search
// credential only disables search.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.New(os.Stdout, cfg.General.LogPrefix, log.LstdFlags)
	}

	if !a.lmSet {
		lm, err := provider.NewProvider(cfg.LLM, cfg.General.Debug, nil)
		if err != nil {
			return nil, err
		}
		a.lm = lm
	}
	if a.lm == nil {
		return nil, pipeline.ConfigurationError{Reason: "language model is not configured"}
	}

	if !a.searcherSet {
		findings, err := web_search.FromConfig(cfg.Search)
		if err != nil {
			return nil, pipeline.ConfigurationError{Reason: "search", Err: err}
		}
		if findings != nil {
			a.searcher = findings
		}
	}
	if a.searcher == nil {
		a.logger.Printf("Search credential not set, web search disabled")
	}

	if a.selector == nil {
		var (
			sel *topic.Selector
			err error
		)
		if cfg.Pipeline.Seed != 0 {
			sel, err = topic.NewSeededSelector(cfg.Pipeline.Topics, cfg.Pipeline.Seed)
		} else {
			sel, err = topic.NewSelector(cfg.Pipeline.Topics)
		}
		if err != nil {
			return nil, err
		}
		a.selector = sel
	}

	mode := pipeline.SearchPreferred
	if cfg.Pipeline.RequireSearch {
		mode = pipeline.SearchRequired
	}
	stages, err := listing.Stages(mode)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Validate(stages); err != nil {
		return nil, err
	}
	a.stages = stages
	return a, nil
}

// Run selects a topic, executes the stages and writes the artifact. Nothing
// is written unless every stage succeeded.
func (a *App) Run(ctx context.Context) (pipeline.Outcome, error) {
	tel, err := telemetry.NewTelemetry(ctx, a.cfg.Telemetry)
	if err != nil {
		return pipeline.Outcome{}, pipeline.ConfigurationError{Reason: "telemetry", Err: err}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			a.logger.Printf("warn: telemetry shutdown: %v", err)
		}
	}()

	opts := []pipeline.RunnerOption{pipeline.WithTelemetry(tel)}
	if a.searcher != nil {
		opts = append(opts, pipeline.WithSearcher(a.searcher))
	}
	if a.runIDs != nil {
		opts = append(opts, pipeline.WithRunIDs(a.runIDs))
	}
	runner, err := pipeline.NewRunner(a.lm, opts...)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	chosen := a.selector.Select()
	a.logger.Printf("Research angle: %q", chosen)

	out, err := runner.Run(ctx, chosen.String(), a.stages)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	report := listing.Check(out.Artifact)
	for _, issue := range report.Issues {
		a.logger.Printf("warn: listing layout: %s", issue)
	}

	if err := (storage.FileWriter{Path: a.cfg.Output.Path}).Write(out.Artifact); err != nil {
		return pipeline.Outcome{}, err
	}
	a.logger.Printf("Report written: %s", a.cfg.Output.Path)

	a.mirror(ctx, out)
	return out, nil
}

// mirror uploads the artifact when object storage is configured. Failures
// are logged; the local file is the artifact of record.
func (a *App) mirror(ctx context.Context, out pipeline.Outcome) {
	if !a.cfg.Output.S3.Enabled() {
		return
	}
	m, err := storage.NewS3Mirror(a.cfg.Output.S3, nil)
	if err != nil {
		a.logger.Printf("warn: s3 mirror: %v", err)
		return
	}
	if _, err := m.Upload(ctx, out.RunID, out.Topic, out.Artifact, a.now()); err != nil {
		a.logger.Printf("warn: s3 mirror: %v", err)
	}
}

// Topics returns the effective catalogue.
func (a *App) Topics() []topic.Topic { return a.selector.Catalog() }
