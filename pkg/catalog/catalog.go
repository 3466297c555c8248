// Package catalog resolves configured column names against a header and
// creates one column per name.
//
// Float columns share one positional index space, binned columns first and
// raw columns after, each in declaration order. String columns are numbered
// in their own space. The positions index the Floats and Strings slices of
// a tsv.Block parsed with the catalog's Layout.
package catalog

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tsvstore/pkg/columnar"
	"github.com/ajitpratap0/tsvstore/pkg/config"
	"github.com/ajitpratap0/tsvstore/pkg/logger"
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
	"github.com/ajitpratap0/tsvstore/pkg/tsv"
)

// ColumnFactory creates the column backing one configured name.
type ColumnFactory func(name string, kind columnar.Kind, opts columnar.Options) (columnar.Column, error)

// Options configure Build.
type Options struct {
	// MaxBins is passed to binned float columns.
	MaxBins int
	// NewColumn creates columns. Nil means columnar.New.
	NewColumn ColumnFactory
	// Delimiter is used by BuildFromFile to split the header. Zero means tab.
	Delimiter byte
	Logger    *zap.Logger
}

// Entry binds one configured column to its header and block positions.
type Entry struct {
	Name        string
	Kind        columnar.Kind
	Column      columnar.Column
	HeaderIndex int
	// Position indexes Block.Floats for float kinds, Block.Strings otherwise.
	Position int
}

// Catalog is immutable after Build.
type Catalog struct {
	entries   []Entry
	byName    map[string]int
	numFields int
	floats    []int
	strings   []int
}

// Build resolves cols against header. A name absent from the header is a
// not_found error naming the column; a name declared twice is a validation
// error.
func Build(header []string, cols config.ColumnsConfig, opts Options) (*Catalog, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}
	if opts.NewColumn == nil {
		opts.NewColumn = columnar.New
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if prev, dup := index[name]; dup {
			log.Warn("duplicate header name, last occurrence wins",
				zap.String("column", name),
				zap.Int("first_index", prev),
				zap.Int("index", i))
		}
		index[name] = i
	}

	c := &Catalog{
		entries:   make([]Entry, 0, cols.Len()),
		byName:    make(map[string]int, cols.Len()),
		numFields: len(header),
	}
	colOpts := columnar.Options{MaxBins: opts.MaxBins}

	add := func(names []string, kind columnar.Kind) error {
		for _, name := range names {
			hidx, ok := index[name]
			if !ok {
				return storeerrors.New(storeerrors.ErrorTypeNotFound, "column not found in header").
					WithDetail("column", name).
					WithDetail("kind", kind.String())
			}
			col, err := opts.NewColumn(name, kind, colOpts)
			if err != nil {
				return err
			}

			e := Entry{Name: name, Kind: kind, Column: col, HeaderIndex: hidx}
			if kind.IsFloat() {
				e.Position = len(c.floats)
				c.floats = append(c.floats, hidx)
			} else {
				e.Position = len(c.strings)
				c.strings = append(c.strings, hidx)
			}
			c.byName[name] = len(c.entries)
			c.entries = append(c.entries, e)
		}
		return nil
	}

	if err := add(cols.BinnedFloat, columnar.KindBinnedFloat); err != nil {
		return nil, err
	}
	if err := add(cols.RawFloat, columnar.KindRawFloat); err != nil {
		return nil, err
	}
	if err := add(cols.String, columnar.KindString); err != nil {
		return nil, err
	}

	return c, nil
}

// BuildFromFile reads the header of path and calls Build.
func BuildFromFile(path string, cols config.ColumnsConfig, opts Options) (*Catalog, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = '\t'
	}
	header, err := tsv.ReadHeader(path, delim)
	if err != nil {
		return nil, err
	}
	return Build(header, cols, opts)
}

// Entries returns every entry: binned, then raw, then string columns, each
// in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry returns the entry for name.
func (c *Catalog) Entry(name string) (Entry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Columns returns the columns in entry order.
func (c *Catalog) Columns() []columnar.Column {
	out := make([]columnar.Column, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Column
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// NumFloat returns the size of the float position space.
func (c *Catalog) NumFloat() int { return len(c.floats) }

// NumString returns the size of the string position space.
func (c *Catalog) NumString() int { return len(c.strings) }

// Layout returns the parse layout matching the catalog positions.
func (c *Catalog) Layout() tsv.Layout {
	return tsv.Layout{
		NumFields:    c.numFields,
		FloatFields:  append([]int(nil), c.floats...),
		StringFields: append([]int(nil), c.strings...),
	}
}

// Values returns the slice of block b feeding entry e.
func (e Entry) Values(b *tsv.Block) columnar.Values {
	if e.Kind.IsFloat() {
		return columnar.Values{Floats: b.Floats[e.Position]}
	}
	return columnar.Values{Strings: b.Strings[e.Position]}
}
