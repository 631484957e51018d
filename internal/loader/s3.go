package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const s3Scheme = "s3://"

// S3GetObjectAPI is the part of *s3.Client the fetcher needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Fetcher struct {
	client S3GetObjectAPI
}

func NewS3Fetcher(ctx context.Context, region string) (*S3Fetcher, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3Fetcher{client: s3.NewFromConfig(cfg)}, nil
}

func NewS3FetcherWithClient(client S3GetObjectAPI) *S3Fetcher {
	return &S3Fetcher{client: client}
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %s", location)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location needs a bucket and a key: %s", location)
	}
	return bucket, key, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseS3URI(location)
	if err != nil {
		return nil, err
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, &NotFoundError{Path: location, Err: err}
		}
		return nil, fmt.Errorf("unable to download %s: %w", location, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", location, err)
	}
	return data, nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
