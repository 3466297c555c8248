package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

func validConfig() *LoaderConfig {
	cfg := NewLoaderConfig()
	cfg.HeaderFile = "header.tsv"
	cfg.DataFiles = []string{"part-0.tsv"}
	cfg.Columns = ColumnsConfig{
		BinnedFloat: []string{"a"},
		RawFloat:    []string{"c"},
		String:      []string{"b"},
	}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LoaderConfig)
		errType storeerrors.ErrorType
	}{
		{"valid", func(*LoaderConfig) {}, ""},
		{"missing header", func(c *LoaderConfig) { c.HeaderFile = "" }, storeerrors.ErrorTypeConfig},
		{"no data files", func(c *LoaderConfig) { c.DataFiles = nil }, storeerrors.ErrorTypeConfig},
		{"negative workers", func(c *LoaderConfig) { c.Performance.Workers = -1 }, storeerrors.ErrorTypeConfig},
		{"one bin", func(c *LoaderConfig) { c.Binning.MaxBins = 1 }, storeerrors.ErrorTypeConfig},
		{"too many bins", func(c *LoaderConfig) { c.Binning.MaxBins = MaxMaxBins + 1 }, storeerrors.ErrorTypeConfig},
		{"sample rate above one", func(c *LoaderConfig) { rate := 1.5; c.Observability.TracingSampleRate = &rate }, storeerrors.ErrorTypeConfig},
		{"multi-byte delimiter", func(c *LoaderConfig) { c.Parsing.Delimiter = "::" }, storeerrors.ErrorTypeConfig},
		{"no columns", func(c *LoaderConfig) { c.Columns = ColumnsConfig{} }, storeerrors.ErrorTypeConfig},
		{"duplicate within list", func(c *LoaderConfig) { c.Columns.String = []string{"b", "b"} }, storeerrors.ErrorTypeValidation},
		{"duplicate across lists", func(c *LoaderConfig) { c.Columns.RawFloat = []string{"a"} }, storeerrors.ErrorTypeValidation},
		{"empty name", func(c *LoaderConfig) { c.Columns.String = []string{""} }, storeerrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, storeerrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestDuplicateNamesTheColumn(t *testing.T) {
	cols := ColumnsConfig{BinnedFloat: []string{"x"}, String: []string{"x"}}
	err := cols.Validate()
	require.Error(t, err)

	column, ok := storeerrors.Detail(err, "column")
	require.True(t, ok)
	assert.Equal(t, "x", column)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &LoaderConfig{
		Performance: PerformanceConfig{Workers: 3},
		Binning:     BinningConfig{MaxBins: 16},
		Parsing:     ParsingConfig{Delimiter: ",", MissingValues: []string{}},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 3, cfg.Performance.Workers)
	assert.Equal(t, 16, cfg.Binning.MaxBins)
	assert.Equal(t, byte(','), cfg.Parsing.DelimiterByte())
	assert.Empty(t, cfg.Parsing.MissingValues)
	assert.Equal(t, DefaultMaxLineBytes, cfg.Parsing.MaxLineBytes)
}

func TestLoadSubstitutesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "load.yaml")
	t.Setenv("TSVSTORE_TEST_DIR", "/data")

	content := `
header_file: ${TSVSTORE_TEST_DIR}/header.tsv
data_files:
  - ${TSVSTORE_TEST_DIR}/part-0.tsv
  - ${TSVSTORE_TEST_DIR}/part-1.tsv
columns:
  binned_float: [a]
  raw_float: [c]
  string: [b]
performance:
  workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadLoaderConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/header.tsv", cfg.HeaderFile)
	assert.Equal(t, []string{"/data/part-0.tsv", "/data/part-1.tsv"}, cfg.DataFiles)
	assert.Equal(t, []string{"a"}, cfg.Columns.BinnedFloat)
	assert.Equal(t, 4, cfg.Performance.Workers)
	assert.Equal(t, DefaultMaxBins, cfg.Binning.MaxBins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadKeepsExplicitZeroAndNegativeValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "load.yaml")
	content := `
header_file: header.tsv
data_files: [part-0.tsv]
columns:
  raw_float: [a]
performance:
  workers: -3
observability:
  tracing_sample_rate: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadLoaderConfig(path)
	require.NoError(t, err)

	assert.Equal(t, -3, cfg.Performance.Workers)
	assert.Equal(t, 0.0, cfg.Observability.SampleRate())

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeConfig))
	workers, ok := storeerrors.Detail(err, "workers")
	require.True(t, ok)
	assert.Equal(t, -3, workers)
}

func TestApplyDefaultsFillsUnsetSampleRate(t *testing.T) {
	cfg := &LoaderConfig{}
	cfg.ApplyDefaults()

	require.NotNil(t, cfg.Observability.TracingSampleRate)
	assert.Equal(t, DefaultTracingSampleRate, cfg.Observability.SampleRate())
	assert.Positive(t, cfg.Performance.Workers)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := validConfig()

	require.NoError(t, Save(path, cfg))
	loaded, err := LoadLoaderConfig(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Columns, loaded.Columns)
	assert.Equal(t, cfg.HeaderFile, loaded.HeaderFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadLoaderConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
