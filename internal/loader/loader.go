// Package loader reads the experiment dataset from a local path or an s3:// location.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/chrisdamba/expcheck/internal/models"
	"go.uber.org/zap"
)

// Fetcher returns the raw bytes stored at location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

type FileFetcher struct{}

func (FileFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: location, Err: err}
		}
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

type Loader struct {
	local  Fetcher
	remote Fetcher
	region string
	logger *zap.Logger
}

type Option func(*Loader)

// WithS3Fetcher sets the fetcher used for s3:// locations.
func WithS3Fetcher(f Fetcher) Option {
	return func(l *Loader) { l.remote = f }
}

// WithRegion sets the AWS region used when an S3 fetcher has to be created on demand.
func WithRegion(region string) Option {
	return func(l *Loader) { l.region = region }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func New(opts ...Option) *Loader {
	l := &Loader{local: FileFetcher{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes the dataset at location. It fails with *NotFoundError
// when nothing is stored there and *ParseError when the content is not a valid dataset document.
func (l *Loader) Load(ctx context.Context, location string) (*models.Dataset, error) {
	fetcher, err := l.fetcherFor(ctx, location)
	if err != nil {
		return nil, err
	}

	data, err := fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("dataset read", zap.String("location", location), zap.Int("bytes", len(data)))

	ds, err := models.DecodeDataset(data)
	if err != nil {
		return nil, &ParseError{Path: location, Err: err}
	}
	l.logger.Debug("dataset decoded", zap.Int("orders", len(ds.Orders)))
	return ds, nil
}

func (l *Loader) fetcherFor(ctx context.Context, location string) (Fetcher, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return l.local, nil
	}
	if l.remote == nil {
		f, err := NewS3Fetcher(ctx, l.region)
		if err != nil {
			return nil, err
		}
		l.remote = f
	}
	return l.remote, nil
}

// Load reads location with a default Loader.
func Load(ctx context.Context, location string) (*models.Dataset, error) {
	return New().Load(ctx, location)
}
