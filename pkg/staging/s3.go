package staging

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

// S3Backend reads objects with the AWS SDK v2 download manager.
type S3Backend struct {
	region string

	once       sync.Once
	initErr    error
	client     *s3.Client
	downloader *manager.Downloader
}

// NewS3Backend creates a backend. An empty region defers to the SDK's
// default resolution chain.
func NewS3Backend(region string) *S3Backend {
	return &S3Backend{region: region}
}

func (b *S3Backend) init(ctx context.Context) error {
	b.once.Do(func() {
		var opts []func(*awsconfig.LoadOptions) error
		if b.region != "" {
			opts = append(opts, awsconfig.WithRegion(b.region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			b.initErr = storeerrors.Wrap(err, storeerrors.ErrorTypeConfig, "failed to load AWS configuration")
			return
		}
		b.client = s3.NewFromConfig(cfg)
		b.downloader = manager.NewDownloader(b.client)
	})
	return b.initErr
}

// Stat checks that the object exists.
func (b *S3Backend) Stat(ctx context.Context, bucket, key string) error {
	if err := b.init(ctx); err != nil {
		return err
	}
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return storeerrors.Wrap(err, storeerrors.ErrorTypeNotFound, "object does not exist").
			WithDetail("bucket", bucket).
			WithDetail("key", key)
	}
	return err
}

// Download writes the object to dst using concurrent ranged reads.
func (b *S3Backend) Download(ctx context.Context, bucket, key string, dst *os.File) error {
	if err := b.init(ctx); err != nil {
		return err
	}
	_, err := b.downloader.Download(ctx, dst, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}
