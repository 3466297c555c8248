// Package pipeline loads a set of TSV files into a columnar store.
//
// Parsing runs on a bounded pool, one task per file, while the caller's
// goroutine consumes parsed blocks strictly in file-list order and fans
// each block out into its columns before waiting on the next. After the
// last block every column is finalized in parallel.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tsvstore/pkg/catalog"
	"github.com/ajitpratap0/tsvstore/pkg/columnar"
	"github.com/ajitpratap0/tsvstore/pkg/logger"
	"github.com/ajitpratap0/tsvstore/pkg/metrics"
	"github.com/ajitpratap0/tsvstore/pkg/observability"
	"github.com/ajitpratap0/tsvstore/pkg/ordered"
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
	"github.com/ajitpratap0/tsvstore/pkg/tsv"
	"github.com/ajitpratap0/tsvstore/pkg/workerpool"
)

// BlockParser turns one file into one block following layout.
type BlockParser interface {
	ParseFile(ctx context.Context, path string, layout tsv.Layout) (*tsv.Block, error)
}

// Pipeline is safe for sequential reuse; every Load owns its pools and
// columns.
type Pipeline struct {
	cfg       Config
	parser    BlockParser
	newColumn catalog.ColumnFactory
	logger    *zap.Logger
}

// New creates a pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get()
	}
	p.logger = p.logger.With(zap.String("component", "pipeline"))
	if p.parser == nil {
		p.parser = tsv.NewParser(cfg.Parsing, p.logger)
	}
	if p.newColumn == nil {
		p.newColumn = columnar.New
	}
	return p, nil
}

// Workers returns the pool size used by every phase.
func (p *Pipeline) Workers() int { return p.cfg.Workers }

// Load runs one load. It returns either a store holding every configured
// column over every row of every data file, or the first error and no
// store. All goroutines it starts have exited when it returns.
func (p *Pipeline) Load(ctx context.Context, req Request) (store *columnar.Store, err error) {
	ctx = logger.WithLoadID(ctx, uuid.NewString())
	log := logger.WithContext(ctx, p.logger)
	loadTimer := metrics.NewTimer(metrics.PhaseLoad)
	monitor := observability.NewResourceMonitor()

	ctx, span := observability.StartSpan(ctx, "tsvstore.load",
		attribute.Int("files", len(req.DataFiles)),
		attribute.Int("workers", p.cfg.Workers))
	defer func() { observability.EndSpan(span, err) }()

	if err := p.checkInputs(req); err != nil {
		return nil, err
	}

	cat, err := catalog.BuildFromFile(req.HeaderFile, req.Columns, catalog.Options{
		MaxBins:   p.cfg.MaxBins,
		NewColumn: p.newColumn,
		Delimiter: p.cfg.Parsing.Delimiter,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	log.Info("starting load",
		zap.Int("files", len(req.DataFiles)),
		zap.Int("columns", cat.Len()),
		zap.Int("workers", p.cfg.Workers))

	rows, err := p.ingest(ctx, log, cat, req.DataFiles)
	if err != nil {
		log.Error("load failed", zap.Error(err))
		return nil, err
	}

	if err := p.finalize(ctx, log, cat); err != nil {
		log.Error("finalize failed", zap.Error(err))
		return nil, err
	}

	store, err = columnar.NewStore(cat.Columns())
	if err != nil {
		return nil, err
	}

	usage := monitor.Sample()
	log.Info("load complete",
		append([]zap.Field{
			zap.Int("rows", rows),
			zap.Int("columns", store.NumColumns()),
			zap.Int64("store_bytes", store.MemoryUsage()),
			zap.Duration("duration", loadTimer.Stop()),
		}, usage.Fields()...)...)
	return store, nil
}

// checkInputs fails before any worker starts when an input is missing.
func (p *Pipeline) checkInputs(req Request) error {
	if len(req.DataFiles) == 0 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "no data files given")
	}
	if err := tsv.CheckReadable(req.HeaderFile); err != nil {
		return err
	}
	for _, path := range req.DataFiles {
		if err := tsv.CheckReadable(path); err != nil {
			return err
		}
	}
	return nil
}

// ingest parses every file on the parse pool and fans blocks out in file
// order. It returns the number of rows appended.
func (p *Pipeline) ingest(ctx context.Context, log *zap.Logger, cat *catalog.Catalog, files []string) (int, error) {
	layout := cat.Layout()
	entries := cat.Entries()

	seq := ordered.New[*tsv.Block](len(files))
	seq.OnChange(func(pending int) {
		metrics.PendingBlocks.Set(float64(pending))
	})
	defer metrics.PendingBlocks.Set(0)

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		seq.Fail(storeerrors.Wrap(context.Cause(ctx), storeerrors.ErrorTypeCanceled, "load canceled"))
	})
	defer stop()

	parsePool, _ := workerpool.New(loadCtx, p.cfg.Workers)
	fed := make(chan struct{})
	go func() {
		defer close(fed)
		for i, path := range files {
			parsePool.Go(func(ctx context.Context) error {
				return p.parseInto(ctx, seq, i, path, layout)
			})
		}
	}()

	rows, consumeErr := p.consume(loadCtx, log, seq, entries, layout)
	if consumeErr != nil {
		seq.Fail(consumeErr)
		cancel()
	}

	<-fed
	parseErr := parsePool.Wait()

	if consumeErr != nil {
		return 0, consumeErr
	}
	if parseErr != nil {
		return 0, parseErr
	}
	return rows, nil
}

func (p *Pipeline) parseInto(ctx context.Context, seq *ordered.Sequencer[*tsv.Block], i int, path string, layout tsv.Layout) (err error) {
	ctx = logger.WithFile(ctx, path)
	ctx, span := observability.StartSpan(ctx, "tsvstore.parse",
		attribute.String("path", path),
		attribute.Int("index", i))
	defer func() { observability.EndSpan(span, err) }()

	timer := metrics.NewTimer(metrics.PhaseParse)
	block, err := p.parser.ParseFile(ctx, path, layout)
	d := timer.ObserveBlock(err)
	if err != nil {
		seq.Fail(err)
		return err
	}
	if block == nil {
		err = storeerrors.New(storeerrors.ErrorTypeInternal, "parser returned no block").
			WithDetail("path", path)
		seq.Fail(err)
		return err
	}

	logger.WithContext(ctx, p.logger).Debug("parsed block",
		zap.Int("index", i),
		zap.Int("rows", block.Rows),
		zap.Duration("duration", d))
	return seq.Put(i, block)
}

// consume takes blocks in file order and fans each out before taking the
// next.
func (p *Pipeline) consume(ctx context.Context, log *zap.Logger, seq *ordered.Sequencer[*tsv.Block], entries []catalog.Entry, layout tsv.Layout) (int, error) {
	rows := 0
	for {
		wait := time.Now()
		block, i, err := seq.Take()
		if errors.Is(err, ordered.ErrDrained) {
			return rows, nil
		}
		if err != nil {
			return 0, err
		}
		waited := time.Since(wait)

		if err := checkBlock(block, layout); err != nil {
			return 0, err
		}

		timer := metrics.NewTimer(metrics.PhaseFanout)
		if err := p.fanOut(ctx, entries, block, i); err != nil {
			return 0, err
		}
		rows += block.Rows
		metrics.RowsIngested.Add(float64(block.Rows))

		log.Info("consumed block",
			zap.String("file", block.Path),
			zap.Int("index", i),
			zap.Int("rows", block.Rows),
			zap.Duration("wait", waited),
			zap.Duration("fanout", timer.Stop()))
	}
}

// fanOut appends block to every column, one task per column. It returns
// once every column has its values.
func (p *Pipeline) fanOut(ctx context.Context, entries []catalog.Entry, block *tsv.Block, index int) (err error) {
	ctx, span := observability.StartSpan(ctx, "tsvstore.fanout",
		attribute.Int("index", index),
		attribute.Int("rows", block.Rows))
	defer func() { observability.EndSpan(span, err) }()

	return workerpool.Run(ctx, p.cfg.Workers, len(entries), func(_ context.Context, j int) error {
		e := entries[j]
		if err := e.Column.Add(e.Values(block)); err != nil {
			return storeerrors.Wrap(err, storeerrors.ErrorTypeInternal, "failed to add block to column").
				WithDetail("column", e.Name).
				WithDetail("path", block.Path)
		}
		return nil
	})
}

// finalize freezes every column, one task per column.
func (p *Pipeline) finalize(ctx context.Context, log *zap.Logger, cat *catalog.Catalog) (err error) {
	ctx, span := observability.StartSpan(ctx, "tsvstore.finalize",
		attribute.Int("columns", cat.Len()))
	defer func() { observability.EndSpan(span, err) }()

	timer := metrics.NewTimer(metrics.PhaseFinalize)
	entries := cat.Entries()
	err = workerpool.Run(ctx, p.cfg.Workers, len(entries), func(_ context.Context, j int) error {
		e := entries[j]
		if err := e.Column.Finalize(); err != nil {
			return storeerrors.Wrap(err, storeerrors.ErrorTypeInternal, "failed to finalize column").
				WithDetail("column", e.Name)
		}
		metrics.ColumnsFinalized.WithLabelValues(e.Kind.String()).Inc()
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("finalized columns",
		zap.Int("columns", len(entries)),
		zap.Duration("duration", timer.Stop()))
	return nil
}

// checkBlock rejects blocks whose shape does not match layout.
func checkBlock(b *tsv.Block, layout tsv.Layout) error {
	if len(b.Floats) != len(layout.FloatFields) || len(b.Strings) != len(layout.StringFields) {
		return storeerrors.New(storeerrors.ErrorTypeInternal, "block does not match layout").
			WithDetail("path", b.Path)
	}
	for _, v := range b.Floats {
		if len(v) != b.Rows {
			return storeerrors.New(storeerrors.ErrorTypeInternal, "block float slice has wrong length").
				WithDetail("path", b.Path)
		}
	}
	for _, v := range b.Strings {
		if len(v) != b.Rows {
			return storeerrors.New(storeerrors.ErrorTypeInternal, "block string slice has wrong length").
				WithDetail("path", b.Path)
		}
	}
	return nil
}
