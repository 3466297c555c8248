package columnar

import (
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

// Kind identifies a column variant.
type Kind int

const (
	KindBinnedFloat Kind = iota
	KindRawFloat
	KindString
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBinnedFloat:
		return "binned_float"
	case KindRawFloat:
		return "raw_float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// IsFloat reports whether columns of this kind consume float values.
func (k Kind) IsFloat() bool {
	return k == KindBinnedFloat || k == KindRawFloat
}

// Values is one batch of values for a single column. Float kinds read
// Floats, the string kind reads Strings.
type Values struct {
	Floats  []float32
	Strings []string
}

// Len returns the number of values in the batch.
func (v Values) Len() int {
	if v.Floats != nil {
		return len(v.Floats)
	}
	return len(v.Strings)
}

// Column is the capability shared by every column variant.
type Column interface {
	Name() string
	Kind() Kind
	// Len returns the number of rows added so far.
	Len() int
	// Add appends a batch of values. Must not be called concurrently.
	Add(values Values) error
	// Finalize freezes the column. It may be called exactly once.
	Finalize() error
	Finalized() bool
	MemoryUsage() int64
}

// Unwrapper is implemented by column decorators so typed accessors can
// reach the concrete column.
type Unwrapper interface {
	Unwrap() Column
}

// DefaultMaxBins is the bin budget of a binned column, bin 0 included.
const DefaultMaxBins = 256

// Options configure column construction.
type Options struct {
	// MaxBins bounds the number of bins of binned float columns, bin 0
	// included. Zero means DefaultMaxBins.
	MaxBins int
}

// New creates an empty column of the given kind.
func New(name string, kind Kind, opts Options) (Column, error) {
	switch kind {
	case KindBinnedFloat:
		maxBins := opts.MaxBins
		if maxBins == 0 {
			maxBins = DefaultMaxBins
		}
		if maxBins < 2 || maxBins > 1<<16 {
			return nil, storeerrors.New(storeerrors.ErrorTypeConfig, "max bins out of range").
				WithDetail("column", name).
				WithDetail("max_bins", maxBins)
		}
		return NewBinnedFloatColumn(name, maxBins), nil
	case KindRawFloat:
		return NewRawFloatColumn(name), nil
	case KindString:
		return NewStringColumn(name), nil
	default:
		return nil, storeerrors.New(storeerrors.ErrorTypeValidation, "unknown column kind").
			WithDetail("column", name).
			WithDetail("kind", int(kind))
	}
}

// Underlying strips decorators until it reaches a column that does not
// implement Unwrapper.
func Underlying(col Column) Column {
	for {
		u, ok := col.(Unwrapper)
		if !ok {
			return col
		}
		col = u.Unwrap()
	}
}

func errFinalized(name string) error {
	return storeerrors.New(storeerrors.ErrorTypeState, "column already finalized").
		WithDetail("column", name)
}

func errWrongValues(name string, kind Kind) error {
	return storeerrors.New(storeerrors.ErrorTypeValidation, "values do not match column kind").
		WithDetail("column", name).
		WithDetail("kind", kind.String())
}
