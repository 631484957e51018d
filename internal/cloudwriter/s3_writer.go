package cloudwriter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutObjectAPI is the part of *s3.Client the writer needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Writer struct {
	ctx        context.Context
	client     S3PutObjectAPI
	bucket     string
	objectPath string
	buffer     bytes.Buffer
}

type S3WriterFactory struct {
	client S3PutObjectAPI
}

func NewS3WriterFactory(ctx context.Context, region string) (*S3WriterFactory, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3WriterFactory{client: client}, nil
}

func NewS3WriterFactoryWithClient(client S3PutObjectAPI) *S3WriterFactory {
	return &S3WriterFactory{client: client}
}

func (f *S3WriterFactory) NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no bucket configured for %s", objectPath)
	}
	return &S3Writer{
		ctx:        ctx,
		client:     f.client,
		bucket:     bucket,
		objectPath: objectPath,
	}, nil
}

func (w *S3Writer) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

func (w *S3Writer) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.objectPath),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return nil
}
