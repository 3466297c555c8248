// Package staging copies remote inputs (s3:// and gs:// URLs) to local
// files so the parser only ever reads local paths.
//
// Every remote input is checked for existence before any download starts,
// so a missing object fails the load before parsing begins.
package staging

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tsvstore/pkg/config"
	"github.com/ajitpratap0/tsvstore/pkg/logger"
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
	"github.com/ajitpratap0/tsvstore/pkg/workerpool"
)

const defaultDownloadWorkers = 4

// Backend fetches objects from one remote store.
type Backend interface {
	// Stat returns a not_found error when the object does not exist.
	Stat(ctx context.Context, bucket, key string) error
	// Download writes the object to dst.
	Download(ctx context.Context, bucket, key string, dst *os.File) error
}

// Resolver maps input paths to local files.
type Resolver struct {
	dir      string
	workers  int
	backends map[string]Backend
	logger   *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBackend registers b for URLs with the given scheme.
func WithBackend(scheme string, b Backend) Option {
	return func(r *Resolver) {
		r.backends[scheme] = b
	}
}

// WithWorkers sets the number of concurrent downloads.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		r.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = log
	}
}

// NewResolver creates a resolver with S3 and GCS backends. Clients are
// created on first use, so purely local loads need no credentials.
func NewResolver(cfg config.StagingConfig, opts ...Option) *Resolver {
	r := &Resolver{
		dir:     cfg.Dir,
		workers: defaultDownloadWorkers,
		backends: map[string]Backend{
			"s3": NewS3Backend(cfg.AWSRegion),
			"gs": NewGCSBackend(),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get()
	}
	r.logger = r.logger.With(zap.String("component", "staging"))
	return r
}

type remoteInput struct {
	index  int
	raw    string
	scheme string
	bucket string
	key    string
}

// Resolve returns one local path per input, in input order. Local paths
// are returned unchanged. cleanup removes staged copies and is never nil.
func (r *Resolver) Resolve(ctx context.Context, paths []string) (local []string, cleanup func(), err error) {
	cleanup = func() {}
	local = make([]string, len(paths))

	var remotes []remoteInput
	for i, p := range paths {
		in, ok, err := r.parse(i, p)
		if err != nil {
			return nil, cleanup, err
		}
		if !ok {
			local[i] = in.raw
			continue
		}
		remotes = append(remotes, in)
	}
	if len(remotes) == 0 {
		return local, cleanup, nil
	}

	for _, in := range remotes {
		if err := r.backends[in.scheme].Stat(ctx, in.bucket, in.key); err != nil {
			errType := storeerrors.ErrorTypeFile
			if storeerrors.HasType(err, storeerrors.ErrorTypeNotFound) {
				errType = storeerrors.ErrorTypeNotFound
			}
			return nil, cleanup, storeerrors.Wrap(err, errType, "remote input unavailable").
				WithDetail("path", in.raw)
		}
	}

	dir, err := os.MkdirTemp(r.dir, "tsvstore-staging-*")
	if err != nil {
		return nil, cleanup, storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to create staging directory").
			WithDetail("path", r.dir)
	}
	cleanup = func() {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn("failed to remove staging directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	var staged atomic.Int64
	err = workerpool.Run(ctx, r.workers, len(remotes), func(ctx context.Context, i int) error {
		in := remotes[i]
		dst := filepath.Join(dir, fmt.Sprintf("%04d-%s", in.index, path.Base(in.key)))
		if err := r.download(ctx, in, dst); err != nil {
			return err
		}
		local[in.index] = dst
		staged.Add(1)
		return nil
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	r.logger.Info("staged remote inputs",
		zap.Int64("files", staged.Load()),
		zap.String("dir", dir))
	return local, cleanup, nil
}

// parse reports whether raw names a remote object. For local inputs the
// returned raw field holds the local path.
func (r *Resolver) parse(i int, raw string) (remoteInput, bool, error) {
	local := remoteInput{index: i, raw: raw}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return local, false, nil
	}
	if u.Scheme == "file" {
		local.raw = u.Path
		return local, false, nil
	}
	if _, ok := r.backends[u.Scheme]; !ok {
		// Windows drive letters parse as one-letter schemes.
		if len(u.Scheme) == 1 {
			return local, false, nil
		}
		return remoteInput{}, false, storeerrors.New(storeerrors.ErrorTypeConfig, "unsupported input scheme").
			WithDetail("path", raw).
			WithDetail("scheme", u.Scheme)
	}

	key := u.Path
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	if u.Host == "" || key == "" {
		return remoteInput{}, false, storeerrors.New(storeerrors.ErrorTypeConfig, "remote input needs bucket and object").
			WithDetail("path", raw)
	}
	return remoteInput{index: i, raw: raw, scheme: u.Scheme, bucket: u.Host, key: key}, true, nil
}

func (r *Resolver) download(ctx context.Context, in remoteInput, dst string) error {
	f, err := os.Create(dst) //nolint:gosec // G304: path is inside the staging directory
	if err != nil {
		return storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to create staged file").
			WithDetail("path", dst)
	}
	defer f.Close()

	if err := r.backends[in.scheme].Download(ctx, in.bucket, in.key, f); err != nil {
		return storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to download remote input").
			WithDetail("path", in.raw)
	}
	r.logger.Debug("downloaded remote input",
		zap.String("path", in.raw),
		zap.String("local", dst))
	return nil
}
