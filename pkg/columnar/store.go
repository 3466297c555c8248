package columnar

import (
	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

// Store is an immutable set of finalized columns sharing one row count.
type Store struct {
	columns map[string]Column
	names   []string
	numRows int
}

// NewStore groups finalized columns. Names keep the order of cols. Every
// column must be finalized, names must be unique and row counts must agree.
func NewStore(cols []Column) (*Store, error) {
	s := &Store{
		columns: make(map[string]Column, len(cols)),
		names:   make([]string, 0, len(cols)),
	}

	for i, col := range cols {
		name := col.Name()
		if !col.Finalized() {
			return nil, storeerrors.New(storeerrors.ErrorTypeState, "column not finalized").
				WithDetail("column", name)
		}
		if _, dup := s.columns[name]; dup {
			return nil, storeerrors.New(storeerrors.ErrorTypeValidation, "column added to store twice").
				WithDetail("column", name)
		}
		if i == 0 {
			s.numRows = col.Len()
		} else if col.Len() != s.numRows {
			return nil, storeerrors.New(storeerrors.ErrorTypeState, "column row count mismatch").
				WithDetail("column", name).
				WithDetail("rows", col.Len()).
				WithDetail("expected", s.numRows)
		}
		s.columns[name] = col
		s.names = append(s.names, name)
	}

	return s, nil
}

// Column returns the column registered under name.
func (s *Store) Column(name string) (Column, bool) {
	col, ok := s.columns[name]
	return col, ok
}

// Names returns the column names in declaration order.
func (s *Store) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// NumRows returns the common row count.
func (s *Store) NumRows() int { return s.numRows }

// NumColumns returns the number of columns.
func (s *Store) NumColumns() int { return len(s.names) }

// BinnedFloatColumn returns the binned float column registered under name.
func (s *Store) BinnedFloatColumn(name string) (*BinnedFloatColumn, error) {
	return lookup[*BinnedFloatColumn](s, name, KindBinnedFloat)
}

// RawFloatColumn returns the raw float column registered under name.
func (s *Store) RawFloatColumn(name string) (*RawFloatColumn, error) {
	return lookup[*RawFloatColumn](s, name, KindRawFloat)
}

// StringColumn returns the string column registered under name.
func (s *Store) StringColumn(name string) (*StringColumn, error) {
	return lookup[*StringColumn](s, name, KindString)
}

func lookup[T Column](s *Store, name string, kind Kind) (T, error) {
	var zero T
	col, ok := s.columns[name]
	if !ok {
		return zero, storeerrors.New(storeerrors.ErrorTypeNotFound, "column not in store").
			WithDetail("column", name)
	}
	typed, ok := Underlying(col).(T)
	if !ok {
		return zero, storeerrors.New(storeerrors.ErrorTypeValidation, "column has a different kind").
			WithDetail("column", name).
			WithDetail("kind", col.Kind().String()).
			WithDetail("requested", kind.String())
	}
	return typed, nil
}

// MemoryUsage returns the estimated bytes held by all columns.
func (s *Store) MemoryUsage() int64 {
	var total int64
	for _, col := range s.columns {
		total += col.MemoryUsage()
	}
	return total
}
