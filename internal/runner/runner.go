// Package runner sequences a run: load, validate, analyze, report, deliver.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/chrisdamba/expcheck/internal/analysis"
	"github.com/chrisdamba/expcheck/internal/loader"
	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/chrisdamba/expcheck/internal/output"
	"github.com/chrisdamba/expcheck/internal/report"
	"github.com/chrisdamba/expcheck/internal/repositories"
	"github.com/chrisdamba/expcheck/internal/validator"
	"github.com/lucsky/cuid"
	"go.uber.org/zap"
)

var (
	ErrValidationFailed = errors.New("dataset failed structural validation")
	ErrAnalysisFailed   = errors.New("dataset analysis failed")
)

// Outcome is what a run found.
type Outcome struct {
	RunID          string
	Location       string
	Dataset        *models.Dataset
	LoadErr        error
	Validation     validator.Result
	Rounds         []analysis.RoundRow
	ExportLocation string
	CheckedAt      time.Time
}

func (o *Outcome) Valid() bool {
	return o.LoadErr == nil && o.Validation.Valid()
}

// Run converts the outcome into the record published and stored for the run.
func (o *Outcome) Run() models.ValidationRun {
	run := models.ValidationRun{
		ID:             o.RunID,
		Dataset:        o.Location,
		Errors:         o.Validation.Errors,
		ErrorCount:     len(o.Validation.Errors),
		ExportLocation: o.ExportLocation,
		Timestamp:      o.CheckedAt.Unix(),
	}
	switch {
	case o.LoadErr != nil:
		run.Status = models.RunStatusLoadFailed
		run.Errors = []string{o.LoadErr.Error()}
		run.ErrorCount = 1
	case o.Validation.Valid():
		run.Status = models.RunStatusValid
	default:
		run.Status = models.RunStatusInvalid
	}
	if o.Dataset != nil {
		run.Orders = len(o.Dataset.Orders)
	}
	return run
}

type Runner struct {
	cfg       *models.Config
	loader    *loader.Loader
	out       io.Writer
	logger    *zap.Logger
	exporter  output.Exporter
	publisher output.Publisher
	runs      repositories.RunRepository
	now       func() time.Time
}

type Option func(*Runner)

func WithExporter(e output.Exporter) Option {
	return func(r *Runner) { r.exporter = e }
}

func WithPublisher(p output.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

func WithRunRepository(repo repositories.RunRepository) Option {
	return func(r *Runner) { r.runs = repo }
}

func WithLoader(l *loader.Loader) Option {
	return func(r *Runner) { r.loader = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(cfg *models.Config, out io.Writer, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		out:    out,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = loader.New(loader.WithLogger(logger), loader.WithRegion(cfg.CloudStorage.Region))
	}
	return r
}

func (r *Runner) suffix() string {
	if r.cfg.FirstOrderSuffix == "" {
		return models.DefaultFirstOrderSuffix
	}
	return r.cfg.FirstOrderSuffix
}

// Run loads and validates the dataset and, when it is valid, prints every
// analysis. Load and validation failures are reported on the console and only
// become errors in strict mode; analysis and delivery failures are always errors.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	return r.run(ctx, true)
}

// Validate runs the structural checks only.
func (r *Runner) Validate(ctx context.Context) (*Outcome, error) {
	return r.run(ctx, false)
}

func (r *Runner) run(ctx context.Context, analyze bool) (*Outcome, error) {
	p := report.NewPrinter(r.out)
	outcome := &Outcome{
		RunID:     cuid.New(),
		Location:  r.cfg.Dataset,
		CheckedAt: r.now(),
	}
	name := filepath.Base(r.cfg.Dataset)
	log := r.logger.With(zap.String("run", outcome.RunID), zap.String("dataset", r.cfg.Dataset))

	p.Title()

	ds, err := r.loader.Load(ctx, r.cfg.Dataset)
	if err != nil {
		log.Warn("dataset could not be loaded", zap.Error(err))
		outcome.LoadErr = err
		p.LoadError(name, r.cfg.Dataset, err)
		return outcome, r.finish(ctx, outcome, p, err)
	}
	outcome.Dataset = ds
	p.Loaded(name)

	outcome.Validation = validator.Validate(ds)
	p.Validation(outcome.Validation)
	log.Info("dataset validated",
		zap.Bool("valid", outcome.Validation.Valid()),
		zap.Int("errors", len(outcome.Validation.Errors)))

	if !outcome.Validation.Valid() {
		p.Failure()
		return outcome, r.finish(ctx, outcome, p, fmt.Errorf("%w: %d errors", ErrValidationFailed, len(outcome.Validation.Errors)))
	}

	if analyze {
		if err := r.analyze(p, ds); err != nil {
			log.Error("analysis failed", zap.Error(err))
			p.Failure()
			return outcome, errors.Join(err, r.deliver(ctx, outcome))
		}
		p.Success(name)
	} else {
		p.StructureValid()
	}

	if err := r.deliver(ctx, outcome); err != nil {
		return outcome, err
	}
	return outcome, p.Err()
}

// finish handles a run that stopped early. The failure only surfaces in strict mode.
func (r *Runner) finish(ctx context.Context, outcome *Outcome, p *report.Printer, failure error) error {
	deliverErr := r.deliver(ctx, outcome)
	if r.cfg.Strict {
		return errors.Join(failure, deliverErr, p.Err())
	}
	return errors.Join(deliverErr, p.Err())
}

func (r *Runner) analyze(p *report.Printer, ds *models.Dataset) error {
	cities, err := analysis.CityPerformance(ds.Metadata)
	if err != nil {
		p.AnalysisError("City performance analysis", err)
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	p.CityPerformance(cities)

	p.Phases(analysis.Phases(ds.Metadata))

	alignment, err := analysis.Alignment(ds.Metadata)
	if err != nil {
		p.AnalysisError("Recommendation alignment analysis", err)
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	p.Alignment(alignment)

	bundles, err := analysis.Bundles(ds, r.suffix())
	if err != nil {
		p.AnalysisError("Bundle size analysis", err)
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	p.Bundles(bundles)

	p.Earnings(analysis.Earnings(ds.Orders))

	summary, err := analysis.Summary(ds)
	if err != nil {
		p.AnalysisError("Experiment summary", err)
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	p.Summary(summary)
	return nil
}

// deliver exports the round table of a valid run, then publishes and records every run.
func (r *Runner) deliver(ctx context.Context, outcome *Outcome) error {
	var errs []error

	if r.exporter != nil && outcome.Valid() {
		rows, err := analysis.RoundTable(outcome.Dataset, r.suffix())
		if err != nil {
			errs = append(errs, fmt.Errorf("building round table: %w", err))
		} else {
			outcome.Rounds = rows
			location, err := r.exporter.Export(ctx, outcome.RunID, rows)
			if err != nil {
				errs = append(errs, fmt.Errorf("exporting round table: %w", err))
			}
			outcome.ExportLocation = location
		}
	}

	run := outcome.Run()
	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, run); err != nil {
			errs = append(errs, fmt.Errorf("publishing validation event: %w", err))
		}
	}
	if r.runs != nil {
		if err := r.runs.Create(ctx, &run); err != nil {
			errs = append(errs, fmt.Errorf("recording validation run: %w", err))
		}
	}

	return errors.Join(errs...)
}
