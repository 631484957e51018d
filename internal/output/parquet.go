package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/chrisdamba/expcheck/internal/analysis"
	"github.com/chrisdamba/expcheck/internal/cloudwriter"
	"github.com/schollz/progressbar/v3"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// CloudParquetFile adapts a CloudWriter to the write-only subset of source.ParquetFile.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

// Open returns the receiver; the object already exists once writing starts.
func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

// Create returns the receiver; the object is created by the upload on Close.
func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

func (e *FileExporter) parquetFile(ctx context.Context, runID, name string) (source.ParquetFile, string, error) {
	if e.cloudWriterFactory != nil {
		objectPath := path.Join(e.folder, runID, name)
		cw, err := e.cloudWriterFactory.NewWriter(ctx, e.cloudBucketName, objectPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), fmt.Sprintf("s3://%s/%s", e.cloudBucketName, objectPath), nil
	}

	dir := filepath.Join(e.basePath, e.folder, runID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, "", err
	}
	filePath := filepath.Join(dir, name)
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, filePath, nil
}

func (e *FileExporter) exportParquet(ctx context.Context, runID, name string, rows []analysis.RoundRow, bar *progressbar.ProgressBar) (string, error) {
	fw, location, err := e.parquetFile(ctx, runID, name)
	if err != nil {
		return "", err
	}

	pw, err := writer.NewParquetWriter(fw, new(analysis.RoundRow), 1)
	if err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			fw.Close()
			return "", fmt.Errorf("failed to write round %d: %w", r.Round, err)
		}
		_ = bar.Add(1)
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", err
	}
	return location, nil
}
