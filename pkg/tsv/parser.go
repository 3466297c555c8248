package tsv

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tsvstore/pkg/compression"
	"github.com/ajitpratap0/tsvstore/pkg/logger"
	"github.com/ajitpratap0/tsvstore/pkg/pool"
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
	stringpool "github.com/ajitpratap0/tsvstore/pkg/strings"
)

const (
	// DefaultMaxLineBytes bounds a single line when Options leaves it unset.
	DefaultMaxLineBytes = 16 << 20
	initialBufferSize   = 64 << 10
	cancelCheckInterval = 4096
)

// DefaultMissingValues are float tokens read as missing besides the empty field.
var DefaultMissingValues = []string{"NA", "NaN", "nan", "?"}

// Options configure a Parser.
type Options struct {
	Delimiter     byte
	MissingValues []string
	MaxLineBytes  int
	SkipHeaderRow bool
}

// Parser turns files into Blocks. It is safe for concurrent use: every
// call keeps its state on its own stack.
type Parser struct {
	delim         byte
	missing       map[string]struct{}
	maxLineBytes  int
	skipHeaderRow bool
	logger        *zap.Logger
}

// NewParser creates a parser. A nil logger uses the global logger.
func NewParser(opts Options, log *zap.Logger) *Parser {
	if log == nil {
		log = logger.Get()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}
	if opts.MissingValues == nil {
		opts.MissingValues = DefaultMissingValues
	}
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}

	missing := make(map[string]struct{}, len(opts.MissingValues))
	for _, tok := range opts.MissingValues {
		missing[tok] = struct{}{}
	}

	return &Parser{
		delim:         opts.Delimiter,
		missing:       missing,
		maxLineBytes:  opts.MaxLineBytes,
		skipHeaderRow: opts.SkipHeaderRow,
		logger:        log.With(zap.String("component", "tsv_parser")),
	}
}

// ParseFile reads the whole file at path into a Block, decompressing by
// file extension.
func (p *Parser) ParseFile(ctx context.Context, path string, layout Layout) (*Block, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := compression.NewReader(f, compression.Detect(path))
	if err != nil {
		return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to open compressed input").
			WithDetail("path", path)
	}
	defer r.Close()

	block, err := p.Parse(ctx, r, path, layout)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("parsed file",
		zap.String("path", path),
		zap.Int("rows", block.Rows))
	return block, nil
}

// Parse reads r to the end into a Block. path only labels the block and
// its errors.
func (p *Parser) Parse(ctx context.Context, r io.Reader, path string, layout Layout) (*Block, error) {
	size := min(initialBufferSize, p.maxLineBytes)
	buf := pool.GlobalBufferPool.Get(size)
	defer pool.GlobalBufferPool.Put(buf)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(buf[:size:size], p.maxLineBytes)

	block := newBlock(path, layout)
	intern := stringpool.NewIntern()
	minFields := layout.minFields()
	fields := make([][]byte, 0, minFields)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeCanceled, "parse canceled").
					WithDetail("path", path).
					WithDetail("line", lineNo)
			}
		}
		if lineNo == 1 && p.skipHeaderRow {
			continue
		}

		line := scanner.Bytes()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}

		fields = stringpool.SplitBytes(line, p.delim, fields)
		if err := checkFieldCount(len(fields), layout.NumFields, minFields); err != nil {
			return nil, err.WithDetail("path", path).WithDetail("line", lineNo)
		}

		for pos, idx := range layout.FloatFields {
			v, err := p.parseFloat(fields[idx])
			if err != nil {
				return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeData, "invalid float value").
					WithDetail("path", path).
					WithDetail("line", lineNo).
					WithDetail("field", idx)
			}
			block.Floats[pos] = append(block.Floats[pos], v)
		}
		for pos, idx := range layout.StringFields {
			block.Strings[pos] = append(block.Strings[pos], intern.GetBytes(fields[idx]))
		}
		block.Rows++
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeData, "line exceeds maximum length").
				WithDetail("path", path).
				WithDetail("line", lineNo+1).
				WithDetail("max_line_bytes", p.maxLineBytes)
		}
		return nil, storeerrors.Wrap(err, storeerrors.ErrorTypeFile, "failed to read input").
			WithDetail("path", path).
			WithDetail("line", lineNo)
	}

	return block, nil
}

func checkFieldCount(got, exact, minimum int) *storeerrors.Error {
	if exact > 0 && got != exact {
		return storeerrors.New(storeerrors.ErrorTypeData, "wrong field count").
			WithDetail("fields", got).
			WithDetail("expected", exact)
	}
	if got < minimum {
		return storeerrors.New(storeerrors.ErrorTypeData, "too few fields").
			WithDetail("fields", got).
			WithDetail("expected", minimum)
	}
	return nil
}

func (p *Parser) parseFloat(field []byte) (float32, error) {
	if len(field) == 0 {
		return float32(math.NaN()), nil
	}
	s := stringpool.BytesToString(field)
	if _, ok := p.missing[s]; ok {
		return float32(math.NaN()), nil
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}
