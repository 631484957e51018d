package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrisdamba/expcheck/internal/analysis"
	"github.com/chrisdamba/expcheck/internal/factories"
	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/chrisdamba/expcheck/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	runs []models.ValidationRun
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, run models.ValidationRun) error {
	p.runs = append(p.runs, run)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type memoryRuns struct {
	runs []models.ValidationRun
}

func (m *memoryRuns) EnsureSchema(context.Context) error { return nil }

func (m *memoryRuns) Create(_ context.Context, run *models.ValidationRun) error {
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memoryRuns) Count(context.Context) (int, error) { return len(m.runs), nil }

type memoryExporter struct {
	rows  []analysis.RoundRow
	calls int
}

func (e *memoryExporter) Export(_ context.Context, runID string, rows []analysis.RoundRow) (string, error) {
	e.calls++
	e.rows = rows
	return "mem://" + runID, nil
}

func writeDocument(t *testing.T, doc *factories.Document) string {
	t.Helper()
	data, err := doc.JSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "experiment_orders.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func canonicalPath(t *testing.T) string {
	t.Helper()
	ef := &factories.ExperimentFactory{}
	return writeDocument(t, ef.CreateDocument())
}

var fixedClock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestRunValidDataset(t *testing.T) {
	var out bytes.Buffer
	pub := &recordingPublisher{}
	runs := &memoryRuns{}
	exp := &memoryExporter{}
	cfg := &models.Config{Dataset: canonicalPath(t)}

	r := runner.New(cfg, &out, zap.NewNop(),
		runner.WithPublisher(pub),
		runner.WithRunRepository(runs),
		runner.WithExporter(exp),
		runner.WithClock(fixedClock))
	outcome, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, outcome.Valid())
	text := out.String()
	for _, section := range []string{
		"EXPERIMENT ORDER DATA VALIDATOR & ANALYZER",
		"✓ Successfully loaded experiment_orders.json",
		"✅ All validations passed!",
		"CITY PERFORMANCE ANALYSIS",
		"PHASE ANALYSIS",
		"RECOMMENDATION ALIGNMENT ANALYSIS",
		"OPTIMAL BUNDLE SIZE DISTRIBUTION",
		"EARNINGS & TIME ANALYSIS",
		"EXPERIMENT SUMMARY",
		"✅ VALIDATION COMPLETE - DATA IS READY FOR USE",
	} {
		assert.Contains(t, text, section)
	}

	assert.Equal(t, 1, exp.calls)
	assert.Len(t, exp.rows, models.TotalRounds)
	assert.Equal(t, "mem://"+outcome.RunID, outcome.ExportLocation)

	require.Len(t, pub.runs, 1)
	run := pub.runs[0]
	assert.Equal(t, outcome.RunID, run.ID)
	assert.Equal(t, models.RunStatusValid, run.Status)
	assert.Equal(t, 80, run.Orders)
	assert.Equal(t, fixedClock().Unix(), run.Timestamp)
	assert.Equal(t, "mem://"+outcome.RunID, run.ExportLocation)
	assert.Equal(t, pub.runs, runs.runs)
}

func TestValidateSkipsAnalysis(t *testing.T) {
	var out bytes.Buffer
	cfg := &models.Config{Dataset: canonicalPath(t)}

	_, err := runner.New(cfg, &out, zap.NewNop()).Validate(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "✅ STRUCTURE VALID - ANALYSIS SKIPPED")
	assert.NotContains(t, out.String(), "CITY PERFORMANCE ANALYSIS")
}

func invalidPath(t *testing.T) string {
	ef := &factories.ExperimentFactory{}
	doc := ef.CreateDocument()
	doc.Orders = doc.Orders[:len(doc.Orders)-1]
	return writeDocument(t, doc)
}

func TestRunInvalidDataset(t *testing.T) {
	var out bytes.Buffer
	pub := &recordingPublisher{}
	exp := &memoryExporter{}
	cfg := &models.Config{Dataset: invalidPath(t)}

	outcome, err := runner.New(cfg, &out, zap.NewNop(),
		runner.WithPublisher(pub),
		runner.WithExporter(exp)).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, outcome.Valid())
	assert.Contains(t, out.String(), "Expected 80 orders, found 79")
	assert.Contains(t, out.String(), "❌ VALIDATION FAILED - PLEASE FIX ERRORS ABOVE")
	assert.NotContains(t, out.String(), "CITY PERFORMANCE ANALYSIS")

	assert.Zero(t, exp.calls)
	require.Len(t, pub.runs, 1)
	assert.Equal(t, models.RunStatusInvalid, pub.runs[0].Status)
	assert.Equal(t, len(outcome.Validation.Errors), pub.runs[0].ErrorCount)
}

func TestRunInvalidDatasetStrict(t *testing.T) {
	cfg := &models.Config{Dataset: invalidPath(t), Strict: true}

	_, err := runner.New(cfg, &bytes.Buffer{}, zap.NewNop()).Run(context.Background())
	assert.ErrorIs(t, err, runner.ErrValidationFailed)
}

func TestRunMissingDataset(t *testing.T) {
	var out bytes.Buffer
	pub := &recordingPublisher{}
	path := filepath.Join(t.TempDir(), "experiment_orders.json")
	cfg := &models.Config{Dataset: path}

	outcome, err := runner.New(cfg, &out, zap.NewNop(), runner.WithPublisher(pub)).Run(context.Background())
	require.NoError(t, err)

	assert.Error(t, outcome.LoadErr)
	assert.Contains(t, out.String(), "❌ Error: experiment_orders.json not found")
	assert.Contains(t, out.String(), "   Expected location: "+path)
	assert.NotContains(t, out.String(), "VALIDATING ORDER DATA STRUCTURE")

	require.Len(t, pub.runs, 1)
	assert.Equal(t, models.RunStatusLoadFailed, pub.runs[0].Status)
	assert.Equal(t, 1, pub.runs[0].ErrorCount)

	cfg.Strict = true
	_, err = runner.New(cfg, &bytes.Buffer{}, zap.NewNop()).Run(context.Background())
	assert.Error(t, err)
}

func TestRunAnalysisFailure(t *testing.T) {
	ef := &factories.ExperimentFactory{}
	doc := ef.CreateDocument()
	stat, _ := doc.Metadata.CityStats.Get(models.CityPiedmont)
	stat.AvgOptimalRPS = 0
	doc.Metadata.CityStats.Set(models.CityPiedmont, stat)
	var out bytes.Buffer
	cfg := &models.Config{Dataset: writeDocument(t, doc)}

	_, err := runner.New(cfg, &out, zap.NewNop()).Run(context.Background())

	assert.ErrorIs(t, err, runner.ErrAnalysisFailed)
	assert.Contains(t, out.String(), "❌ City performance analysis failed")
	assert.NotContains(t, out.String(), "VALIDATION COMPLETE")
}

func TestRunDeliveryErrorsAreReturned(t *testing.T) {
	boom := errors.New("broker unavailable")
	cfg := &models.Config{Dataset: canonicalPath(t)}

	_, err := runner.New(cfg, &bytes.Buffer{}, zap.NewNop(),
		runner.WithPublisher(&recordingPublisher{err: boom})).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
