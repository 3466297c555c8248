package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tsvstore/pkg/columnar"
	"github.com/ajitpratap0/tsvstore/pkg/config"
	"github.com/ajitpratap0/tsvstore/pkg/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeLoadConfig(t *testing.T, dir, header string, files []string) string {
	t.Helper()
	cfg := config.NewLoaderConfig()
	cfg.HeaderFile = header
	cfg.DataFiles = files
	cfg.Performance.Workers = 2
	cfg.Observability.LogLevel = "error"
	cfg.Columns = config.ColumnsConfig{
		BinnedFloat: []string{"a"},
		RawFloat:    []string{"c"},
		String:      []string{"b"},
	}
	path := filepath.Join(dir, "load.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func TestLoadCommandJSONSummary(t *testing.T) {
	dir := t.TempDir()
	header, files := testutil.CreateTestData(t, dir, 3, 10)
	cfgPath := writeLoadConfig(t, dir, header, files)

	out, err := execute(t, "load", "--config", cfgPath, "--summary-json")
	require.NoError(t, err)

	var sum columnar.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 30, sum.Rows)
	require.Len(t, sum.Columns, 3)
	assert.Equal(t, "a", sum.Columns[0].Name)
	assert.Equal(t, 3, sum.Columns[2].Cardinality)
}

func TestLoadCommandArgsOverrideFiles(t *testing.T) {
	dir := t.TempDir()
	header, files := testutil.CreateTestData(t, dir, 3, 10)
	cfgPath := writeLoadConfig(t, dir, header, files)

	out, err := execute(t, "load", "--config", cfgPath, "--workers", "1", files[0])
	require.NoError(t, err)
	assert.Contains(t, out, "rows: 10")
	assert.Contains(t, out, "binned_float")
}

func TestLoadCommandEnvLists(t *testing.T) {
	dir := t.TempDir()
	header, files := testutil.CreateTestData(t, dir, 3, 10)

	cfg := config.NewLoaderConfig()
	cfg.HeaderFile = header
	cfg.Performance.Workers = 2
	cfg.Observability.LogLevel = "error"
	cfgPath := filepath.Join(dir, "load.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	t.Setenv("TSVSTORE_DATA_FILES", files[0]+","+files[2])
	t.Setenv("TSVSTORE_COLUMNS_RAW_FLOAT", "a,c")
	t.Setenv("TSVSTORE_COLUMNS_STRING", "b")

	out, err := execute(t, "load", "--config", cfgPath, "--summary-json")
	require.NoError(t, err)

	var sum columnar.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 20, sum.Rows)
	names := make([]string, 0, len(sum.Columns))
	for _, col := range sum.Columns {
		names = append(names, col.Name)
	}
	assert.ElementsMatch(t, []string{"a", "c", "b"}, names)
}

func TestLoadCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	header, _ := testutil.CreateTestData(t, dir, 1, 1)
	cfgPath := writeLoadConfig(t, dir, header, []string{filepath.Join(dir, "absent.tsv")})

	_, err := execute(t, "load", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_found")
}

func TestHeaderCommand(t *testing.T) {
	path := testutil.WriteLines(t, t.TempDir(), "header.tsv", "a\tb\tc")

	out, err := execute(t, "header", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"2", "c"}, strings.Fields(lines[2]))
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter.yaml")

	_, err := execute(t, "init-config", path)
	require.NoError(t, err)

	cfg, err := config.LoadLoaderConfig(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"age"}, cfg.Columns.BinnedFloat)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tsvstore v"+version)
}
