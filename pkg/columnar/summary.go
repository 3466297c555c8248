package columnar

import "math"

// Summary describes a finalized store.
type Summary struct {
	Rows        int             `json:"rows"`
	MemoryBytes int64           `json:"memory_bytes"`
	Columns     []ColumnSummary `json:"columns"`
}

// ColumnSummary describes one column of a store.
type ColumnSummary struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	MemoryBytes int64    `json:"memory_bytes"`
	Bins        int      `json:"bins,omitempty"`
	Cardinality int      `json:"cardinality,omitempty"`
	Missing     int      `json:"missing,omitempty"`
	Min         *float32 `json:"min,omitempty"`
	Max         *float32 `json:"max,omitempty"`
}

// Summary reports per-column statistics in declaration order.
func (s *Store) Summary() Summary {
	out := Summary{
		Rows:        s.numRows,
		MemoryBytes: s.MemoryUsage(),
		Columns:     make([]ColumnSummary, 0, len(s.names)),
	}

	for _, name := range s.names {
		col := s.columns[name]
		cs := ColumnSummary{
			Name:        name,
			Kind:        col.Kind().String(),
			MemoryBytes: col.MemoryUsage(),
		}

		switch c := Underlying(col).(type) {
		case *BinnedFloatColumn:
			cs.Bins = c.NumBins()
			for _, b := range c.Bins() {
				if b == 0 {
					cs.Missing++
				}
			}
		case *RawFloatColumn:
			if lo, hi, ok := c.Range(); ok {
				cs.Min, cs.Max = &lo, &hi
			}
			for _, v := range c.Values() {
				if math.IsNaN(float64(v)) {
					cs.Missing++
				}
			}
		case *StringColumn:
			cs.Cardinality = len(c.Dictionary())
		}

		out.Columns = append(out.Columns, cs)
	}

	return out
}
