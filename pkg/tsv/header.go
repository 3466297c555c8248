package tsv

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/ajitpratap0/tsvstore/pkg/compression"
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
	stringpool "github.com/ajitpratap0/tsvstore/pkg/strings"
)

// ReadHeader returns the trimmed field names of the first line of path.
func ReadHeader(path string, delim byte) ([]string, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := compression.NewReader(f, compression.Detect(path))
	if err != nil {
		return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to open header").
			WithDetail("path", path)
	}
	defer r.Close()

	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to read header").
			WithDetail("path", path)
	}
	line = trimEOL(line)
	if len(line) == 0 {
		return nil, storeerrors.New(storeerrors.ErrorTypeData, "header line is empty").
			WithDetail("path", path)
	}

	fields := stringpool.SplitBytes(line, delim, nil)
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = stringpool.TrimSpace(string(field))
	}
	return names, nil
}

// openInput opens path, mapping a missing file to a not_found error.
func openInput(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: input paths come from the load request
	if err == nil {
		return f, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeNotFound, "input file does not exist").
			WithDetail("path", path)
	}
	return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to open input file").
		WithDetail("path", path)
}

// CheckReadable verifies that path exists and is a regular readable file.
func CheckReadable(path string) error {
	f, err := openInput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to stat input file").
			WithDetail("path", path)
	}
	if info.IsDir() {
		return storeerrors.New(storeerrors.ErrorTypeFile, "input path is a directory").
			WithDetail("path", path)
	}
	return nil
}

func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
