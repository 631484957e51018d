// Package output delivers a run's results outside the console: round table
// exports (CSV, JSON, Parquet; local or S3) and validation events on Kafka.
package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/chrisdamba/expcheck/internal/analysis"
	"github.com/chrisdamba/expcheck/internal/cloudwriter"
	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// Exporter writes the round table of a run somewhere and returns where.
type Exporter interface {
	Export(ctx context.Context, runID string, rows []analysis.RoundRow) (string, error)
}

type FileExporter struct {
	format             string
	basePath           string
	folder             string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	progress           io.Writer
	logger             *zap.Logger
}

type ExporterOption func(*FileExporter)

// WithCloudWriterFactory uploads exports through factory instead of writing local files.
func WithCloudWriterFactory(factory cloudwriter.CloudWriterFactory, bucket string) ExporterOption {
	return func(e *FileExporter) {
		e.cloudWriterFactory = factory
		e.cloudBucketName = bucket
	}
}

// WithProgress draws an export progress bar on w.
func WithProgress(w io.Writer) ExporterOption {
	return func(e *FileExporter) { e.progress = w }
}

func WithLogger(logger *zap.Logger) ExporterOption {
	return func(e *FileExporter) { e.logger = logger }
}

func NewFileExporter(format, basePath, folder string, opts ...ExporterOption) (*FileExporter, error) {
	switch format {
	case FormatCSV, FormatJSON, FormatParquet:
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	e := &FileExporter{
		format:   format,
		basePath: basePath,
		folder:   folder,
		progress: io.Discard,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewExporter builds the exporter described by cfg, or nil when exports are off.
func NewExporter(ctx context.Context, cfg *models.Config, logger *zap.Logger) (Exporter, error) {
	if cfg.ExportFormat == "" {
		return nil, nil
	}
	opts := []ExporterOption{WithLogger(logger)}
	if cfg.ShowProgress {
		opts = append(opts, WithProgress(os.Stderr))
	}

	switch cfg.CloudStorage.Provider {
	case "", "local":
	case "s3":
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		opts = append(opts, WithCloudWriterFactory(factory, cfg.CloudStorage.BucketName))
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
	}

	return NewFileExporter(cfg.ExportFormat, cfg.OutputPath, cfg.OutputFolder, opts...)
}

func (e *FileExporter) Export(ctx context.Context, runID string, rows []analysis.RoundRow) (string, error) {
	name := "rounds." + e.format

	var (
		location string
		err      error
	)
	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionSetDescription("exporting rounds"),
		progressbar.OptionClearOnFinish(),
	)

	if e.format == FormatParquet {
		location, err = e.exportParquet(ctx, runID, name, rows, bar)
	} else {
		location, err = e.exportStream(ctx, runID, name, rows, bar)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("round table exported",
		zap.String("run", runID),
		zap.String("format", e.format),
		zap.String("location", location),
		zap.Int("rows", len(rows)))
	return location, nil
}

// destination opens the output object for a run, locally or in the bucket.
func (e *FileExporter) destination(ctx context.Context, runID, name string) (io.WriteCloser, string, error) {
	if e.cloudWriterFactory != nil {
		objectPath := path.Join(e.folder, runID, name)
		w, err := e.cloudWriterFactory.NewWriter(ctx, e.cloudBucketName, objectPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return w, fmt.Sprintf("s3://%s/%s", e.cloudBucketName, objectPath), nil
	}

	dir := filepath.Join(e.basePath, e.folder, runID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, "", err
	}
	filePath := filepath.Join(dir, name)
	f, err := os.Create(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	return f, filePath, nil
}

func (e *FileExporter) exportStream(ctx context.Context, runID, name string, rows []analysis.RoundRow, bar *progressbar.ProgressBar) (string, error) {
	w, location, err := e.destination(ctx, runID, name)
	if err != nil {
		return "", err
	}

	var writeErr error
	if e.format == FormatCSV {
		writeErr = writeCSV(w, rows, bar)
	} else {
		writeErr = writeJSON(w, rows, bar)
	}
	closeErr := w.Close()
	if writeErr != nil {
		return "", writeErr
	}
	if closeErr != nil {
		return "", closeErr
	}
	return location, nil
}

var csvHeader = []string{
	"round", "city", "phase", "orders", "recommended", "earnings", "baseTimeS",
	"scenarioType", "optimalBundleSize", "optimalRps", "optimalCombo",
}

func writeCSV(w io.Writer, rows []analysis.RoundRow, bar *progressbar.ProgressBar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(int(r.Round)),
			r.City,
			r.Phase,
			strconv.Itoa(int(r.Orders)),
			strconv.Itoa(int(r.Recommended)),
			strconv.FormatFloat(r.Earnings, 'f', -1, 64),
			strconv.FormatFloat(r.BaseTimeS, 'f', -1, 64),
			r.ScenarioType,
			strconv.Itoa(int(r.OptimalBundleSize)),
			strconv.FormatFloat(r.OptimalRPS, 'f', -1, 64),
			r.OptimalCombo,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON writes one JSON object per line.
func writeJSON(w io.Writer, rows []analysis.RoundRow, bar *progressbar.ProgressBar) error {
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	return nil
}
