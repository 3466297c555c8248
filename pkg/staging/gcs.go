package staging

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"cloud.google.com/go/storage"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

// GCSBackend reads objects with the Cloud Storage client using
// application default credentials.
type GCSBackend struct {
	once    sync.Once
	initErr error
	client  *storage.Client
}

// NewGCSBackend creates a backend.
func NewGCSBackend() *GCSBackend {
	return &GCSBackend{}
}

func (b *GCSBackend) init(ctx context.Context) error {
	b.once.Do(func() {
		client, err := storage.NewClient(ctx)
		if err != nil {
			b.initErr = storeerrors.Wrap(err, storeerrors.ErrorTypeConfig, "failed to create GCS client")
			return
		}
		b.client = client
	})
	return b.initErr
}

// Stat checks that the object exists.
func (b *GCSBackend) Stat(ctx context.Context, bucket, key string) error {
	if err := b.init(ctx); err != nil {
		return err
	}
	_, err := b.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return storeerrors.Wrap(err, storeerrors.ErrorTypeNotFound, "object does not exist").
			WithDetail("bucket", bucket).
			WithDetail("key", key)
	}
	return err
}

// Download streams the object into dst.
func (b *GCSBackend) Download(ctx context.Context, bucket, key string, dst *os.File) error {
	if err := b.init(ctx); err != nil {
		return err
	}
	r, err := b.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(dst, r)
	return err
}
