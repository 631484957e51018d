package loader_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/chrisdamba/expcheck/internal/factories"
	"github.com/chrisdamba/expcheck/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment_orders.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func canonicalJSON(t *testing.T) []byte {
	t.Helper()
	ef := &factories.ExperimentFactory{}
	data, err := ef.CreateDocument().JSON()
	require.NoError(t, err)
	return data
}

func TestLoadLocalFile(t *testing.T) {
	path := writeDataset(t, canonicalJSON(t))

	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Len(t, ds.Orders, 80)
	assert.Equal(t, 20, ds.Metadata.OptimalScenarios.Len())
	assert.True(t, ds.HasKey("orders"))
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := loader.Load(context.Background(), path)

	var notFound *loader.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, path, notFound.Path)
	assert.ErrorIs(t, err, loader.ErrNotFound)
	assert.NotErrorIs(t, err, loader.ErrParse)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeDataset(t, []byte(`{"orders": [`))

	_, err := loader.Load(context.Background(), path)

	var parseErr *loader.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, loader.ErrParse)
	assert.Contains(t, parseErr.Err.Error(), "unexpected end of JSON input")
}

type fakeS3 struct {
	objects map[string][]byte
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	f.calls = append(f.calls, key)
	data, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestLoadFromS3(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"study/configs/experiment_orders.json": canonicalJSON(t),
	}}
	l := loader.New(loader.WithS3Fetcher(loader.NewS3FetcherWithClient(client)))

	ds, err := l.Load(context.Background(), "s3://study/configs/experiment_orders.json")
	require.NoError(t, err)
	assert.Len(t, ds.Orders, 80)
	assert.Equal(t, []string{"study/configs/experiment_orders.json"}, client.calls)

	_, err = l.Load(context.Background(), "s3://study/missing.json")
	assert.ErrorIs(t, err, loader.ErrNotFound)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := loader.ParseS3URI("s3://bucket/a/b.json")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "a/b.json", key)

	for _, bad := range []string{"s3://bucket", "s3:///key", "/local/file.json"} {
		_, _, err := loader.ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}

type failingFetcher struct{ err error }

func (f failingFetcher) Fetch(context.Context, string) ([]byte, error) { return nil, f.err }

func TestLoadPassesThroughFetchErrors(t *testing.T) {
	boom := errors.New("access denied")
	l := loader.New(loader.WithS3Fetcher(failingFetcher{err: boom}))

	_, err := l.Load(context.Background(), "s3://bucket/key.json")
	assert.ErrorIs(t, err, boom)
}
