// Package config provides the configuration system for tsvstore.
// A single LoaderConfig describes one load: where the header and data files
// live, which columns to materialize as which variant, and how much
// parallelism to use.
//
// The configuration is organized into logical sections:
//   - Columns: ordered name lists per column variant
//   - Performance: worker count shared by every pipeline phase
//   - Binning: limits for quantile-binned float columns
//   - Parsing: delimiter, missing-value tokens, line limits
//   - Observability: logging, metrics and tracing switches
//   - Staging: local directory and credentials for remote inputs
//
// Example usage:
//
//	cfg := config.NewLoaderConfig()
//	cfg.HeaderFile = "header.tsv"
//	cfg.DataFiles = []string{"part-0.tsv", "part-1.tsv"}
//	cfg.Columns.BinnedFloat = []string{"age"}
//	cfg.Columns.String = []string{"country"}
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

const (
	// DefaultMaxBins is the default bin budget for binned float columns,
	// including the bin reserved for missing values.
	DefaultMaxBins = 256
	// MaxMaxBins is the largest bin budget representable by uint16 bin ids.
	MaxMaxBins = 1 << 16
	// DefaultMaxLineBytes bounds the length of a single data line.
	DefaultMaxLineBytes = 16 << 20
	// DefaultTracingSampleRate samples every trace.
	DefaultTracingSampleRate = 1.0
)

// LoaderConfig is the complete description of one load.
type LoaderConfig struct {
	// HeaderFile holds the tab-delimited column names shared by all data files
	HeaderFile string `yaml:"header_file" json:"header_file" mapstructure:"header_file"`
	// DataFiles lists the data files in the order their rows are appended
	DataFiles []string `yaml:"data_files" json:"data_files" mapstructure:"data_files"`

	// Columns selects which header columns are loaded and how
	Columns ColumnsConfig `yaml:"columns" json:"columns" mapstructure:"columns"`

	// Performance settings control parallelism
	Performance PerformanceConfig `yaml:"performance" json:"performance" mapstructure:"performance"`

	// Binning settings for binned float columns
	Binning BinningConfig `yaml:"binning" json:"binning" mapstructure:"binning"`

	// Parsing settings for the TSV reader
	Parsing ParsingConfig `yaml:"parsing" json:"parsing" mapstructure:"parsing"`

	// Observability settings for logging, metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`

	// Staging settings for s3:// and gs:// inputs
	Staging StagingConfig `yaml:"staging" json:"staging" mapstructure:"staging"`
}

// ColumnsConfig enumerates column names per variant. Order matters: float
// positions are assigned binned first, then raw, in declaration order.
type ColumnsConfig struct {
	// BinnedFloat columns are quantile-binned at finalization
	BinnedFloat []string `yaml:"binned_float" json:"binned_float" mapstructure:"binned_float"`
	// RawFloat columns keep their float values
	RawFloat []string `yaml:"raw_float" json:"raw_float" mapstructure:"raw_float"`
	// String columns are dictionary-encoded at finalization
	String []string `yaml:"string" json:"string" mapstructure:"string"`
}

// PerformanceConfig contains parallelism settings.
type PerformanceConfig struct {
	// Workers bounds every worker pool (parse, fan-out, finalize); 0 = NumCPU
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"`
}

// BinningConfig contains settings for binned float columns.
type BinningConfig struct {
	// MaxBins is the bin budget per column, bin 0 being reserved for missing values
	MaxBins int `yaml:"max_bins" json:"max_bins" mapstructure:"max_bins"`
}

// ParsingConfig contains TSV reader settings.
type ParsingConfig struct {
	// Delimiter separates fields; a single byte, tab by default
	Delimiter string `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	// MissingValues are tokens parsed as NaN in float columns (empty is always missing)
	MissingValues []string `yaml:"missing_values" json:"missing_values" mapstructure:"missing_values"`
	// MaxLineBytes bounds the length of one data line
	MaxLineBytes int `yaml:"max_line_bytes" json:"max_line_bytes" mapstructure:"max_line_bytes"`
	// SkipHeaderRow skips the first line of every data file
	SkipHeaderRow bool `yaml:"skip_header_row" json:"skip_header_row" mapstructure:"skip_header_row"`
}

// ObservabilityConfig contains monitoring settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding selects json or console output
	LogEncoding string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	// MetricsAddr, when set, serves Prometheus metrics on this address during a load
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" mapstructure:"metrics_addr"`
	// EnableTracing exports OpenTelemetry spans to stdout
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0); unset means 1.0
	TracingSampleRate *float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" mapstructure:"tracing_sample_rate"`
}

// SampleRate returns the configured trace sampling rate, or the default
// when none was set.
func (o ObservabilityConfig) SampleRate() float64 {
	if o.TracingSampleRate == nil {
		return DefaultTracingSampleRate
	}
	return *o.TracingSampleRate
}

// StagingConfig contains settings for remote inputs.
type StagingConfig struct {
	// Dir receives downloaded copies of remote inputs; empty means a temp dir
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`
	// AWSRegion overrides the region resolved by the AWS SDK
	AWSRegion string `yaml:"aws_region" json:"aws_region" mapstructure:"aws_region"`
}

// NewLoaderConfig creates a LoaderConfig with defaults applied.
func NewLoaderConfig() *LoaderConfig {
	cfg := &LoaderConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued settings with their defaults.
func (c *LoaderConfig) ApplyDefaults() {
	if c.Performance.Workers == 0 {
		c.Performance.Workers = runtime.NumCPU()
	}
	if c.Binning.MaxBins == 0 {
		c.Binning.MaxBins = DefaultMaxBins
	}
	if c.Parsing.Delimiter == "" {
		c.Parsing.Delimiter = "\t"
	}
	if c.Parsing.MissingValues == nil {
		c.Parsing.MissingValues = []string{"NA", "NaN", "nan", "?"}
	}
	if c.Parsing.MaxLineBytes <= 0 {
		c.Parsing.MaxLineBytes = DefaultMaxLineBytes
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogEncoding == "" {
		c.Observability.LogEncoding = "json"
	}
	if c.Observability.TracingSampleRate == nil {
		rate := DefaultTracingSampleRate
		c.Observability.TracingSampleRate = &rate
	}
}

// Validate checks the configuration for correctness. It does not touch the
// filesystem; input existence is checked when a load starts.
func (c *LoaderConfig) Validate() error {
	if c.HeaderFile == "" {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "header_file is required")
	}
	if len(c.DataFiles) == 0 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "at least one data file is required")
	}
	if c.Performance.Workers < 0 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "workers cannot be negative").
			WithDetail("workers", c.Performance.Workers)
	}
	if c.Binning.MaxBins < 2 || c.Binning.MaxBins > MaxMaxBins {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "max_bins out of range").
			WithDetail("max_bins", c.Binning.MaxBins).
			WithDetail("min", 2).
			WithDetail("max", MaxMaxBins)
	}
	if rate := c.Observability.SampleRate(); rate < 0 || rate > 1 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "tracing_sample_rate out of range").
			WithDetail("tracing_sample_rate", rate)
	}
	if len(c.Parsing.Delimiter) != 1 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "delimiter must be a single byte").
			WithDetail("delimiter", c.Parsing.Delimiter)
	}
	return c.Columns.Validate()
}

// Validate rejects empty names and names declared more than once, whether
// within one list or across lists.
func (cc ColumnsConfig) Validate() error {
	if cc.Len() == 0 {
		return storeerrors.New(storeerrors.ErrorTypeConfig, "no columns configured")
	}

	seen := make(map[string]string, cc.Len())
	check := func(list string, names []string) error {
		for _, name := range names {
			if name == "" {
				return storeerrors.New(storeerrors.ErrorTypeValidation, "empty column name").
					WithDetail("list", list)
			}
			if prev, dup := seen[name]; dup {
				return storeerrors.New(storeerrors.ErrorTypeValidation, "column declared more than once").
					WithDetail("column", name).
					WithDetail("first", prev).
					WithDetail("second", list)
			}
			seen[name] = list
		}
		return nil
	}

	if err := check("binned_float", cc.BinnedFloat); err != nil {
		return err
	}
	if err := check("raw_float", cc.RawFloat); err != nil {
		return err
	}
	return check("string", cc.String)
}

// Len returns the total number of configured columns.
func (cc ColumnsConfig) Len() int {
	return len(cc.BinnedFloat) + len(cc.RawFloat) + len(cc.String)
}

// DelimiterByte returns the configured delimiter, tab when unset.
func (p ParsingConfig) DelimiterByte() byte {
	if len(p.Delimiter) == 0 {
		return '\t'
	}
	return p.Delimiter[0]
}
