package pipeline

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tsvstore/pkg/catalog"
	"github.com/ajitpratap0/tsvstore/pkg/columnar"
	"github.com/ajitpratap0/tsvstore/pkg/config"
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
	"github.com/ajitpratap0/tsvstore/pkg/tsv"
)

// Config controls one Pipeline.
type Config struct {
	// Workers bounds each of the parse, fan-out and finalize pools.
	// Zero means runtime.NumCPU.
	Workers int
	// MaxBins is the bin budget of binned float columns. Zero means
	// columnar.DefaultMaxBins.
	MaxBins int
	// Parsing configures the default parser and header splitting.
	Parsing tsv.Options
}

// ConfigFromLoader extracts the pipeline settings of a loader configuration.
func ConfigFromLoader(cfg *config.LoaderConfig) Config {
	return Config{
		Workers: cfg.Performance.Workers,
		MaxBins: cfg.Binning.MaxBins,
		Parsing: tsv.Options{
			Delimiter:     cfg.Parsing.DelimiterByte(),
			MissingValues: cfg.Parsing.MissingValues,
			MaxLineBytes:  cfg.Parsing.MaxLineBytes,
			SkipHeaderRow: cfg.Parsing.SkipHeaderRow,
		},
	}
}

func (c *Config) validate() error {
	if c.Workers < 0 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "workers cannot be negative").
			WithDetail("workers", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxBins == 0 {
		c.MaxBins = columnar.DefaultMaxBins
	}
	if c.MaxBins < 2 || c.MaxBins > config.MaxMaxBins {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "max_bins out of range").
			WithDetail("max_bins", c.MaxBins)
	}
	if c.Parsing.Delimiter == 0 {
		c.Parsing.Delimiter = '\t'
	}
	return nil
}

// Request names the inputs and columns of one load.
type Request struct {
	HeaderFile string
	// DataFiles are appended in this order regardless of parse completion order.
	DataFiles []string
	Columns   config.ColumnsConfig
}

// RequestFromLoader extracts the load request of a loader configuration.
func RequestFromLoader(cfg *config.LoaderConfig) Request {
	return Request{
		HeaderFile: cfg.HeaderFile,
		DataFiles:  cfg.DataFiles,
		Columns:    cfg.Columns,
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is the global logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = log
	}
}

// WithParser replaces the TSV parser.
func WithParser(parser BlockParser) Option {
	return func(p *Pipeline) {
		p.parser = parser
	}
}

// WithColumnFactory replaces columnar.New as the column constructor.
func WithColumnFactory(factory catalog.ColumnFactory) Option {
	return func(p *Pipeline) {
		p.newColumn = factory
	}
}
