package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tsvstore/pkg/compression"
)

// WriteLines writes lines joined by newlines to dir/name and returns the path.
func WriteLines(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteCompressed writes lines to dir/name compressed with alg. The file
// extension is appended from alg so readers detect the codec.
func WriteCompressed(t testing.TB, dir, name string, alg compression.Algorithm, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name+compression.Extension(alg))
	f, err := os.Create(path) //nolint:gosec // G304: test fixture path
	require.NoError(t, err)
	defer f.Close()

	w, err := compression.NewWriter(f, alg, compression.Default)
	require.NoError(t, err)
	for _, line := range lines {
		_, err = w.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

// CreateTestData writes a header file with columns a (float), b (string)
// and c (float) plus numFiles data files of rowsPerFile rows each. Row j
// of file i holds a = i*rowsPerFile+j, b = "s<i>", c = a/2.
func CreateTestData(t testing.TB, dir string, numFiles, rowsPerFile int) (header string, files []string) {
	t.Helper()

	header = WriteLines(t, dir, "header.tsv", "a\tb\tc")
	for i := 0; i < numFiles; i++ {
		lines := make([]string, rowsPerFile)
		for j := range lines {
			a := i*rowsPerFile + j
			lines[j] = fmt.Sprintf("%d\ts%d\t%g", a, i, float64(a)/2)
		}
		files = append(files, WriteLines(t, dir, fmt.Sprintf("part-%04d.tsv", i), lines...))
	}
	return header, files
}
