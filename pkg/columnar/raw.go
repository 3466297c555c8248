package columnar

import (
	"math"
	"slices"
)

// RawFloatColumn stores float32 values as given.
type RawFloatColumn struct {
	name      string
	values    []float32
	min, max  float32
	hasRange  bool
	finalized bool
}

// NewRawFloatColumn creates an empty raw float column.
func NewRawFloatColumn(name string) *RawFloatColumn {
	return &RawFloatColumn{
		name:   name,
		values: make([]float32, 0, 1024),
	}
}

func (c *RawFloatColumn) Name() string    { return c.name }
func (c *RawFloatColumn) Kind() Kind      { return KindRawFloat }
func (c *RawFloatColumn) Len() int        { return len(c.values) }
func (c *RawFloatColumn) Finalized() bool { return c.finalized }

func (c *RawFloatColumn) Add(values Values) error {
	if c.finalized {
		return errFinalized(c.name)
	}
	if values.Floats == nil && len(values.Strings) > 0 {
		return errWrongValues(c.name, KindRawFloat)
	}
	c.values = append(c.values, values.Floats...)
	return nil
}

// Finalize trims spare capacity and records the range of non-missing values.
func (c *RawFloatColumn) Finalize() error {
	if c.finalized {
		return errFinalized(c.name)
	}
	c.values = slices.Clip(c.values)
	for _, v := range c.values {
		if math.IsNaN(float64(v)) {
			continue
		}
		if !c.hasRange {
			c.min, c.max, c.hasRange = v, v, true
			continue
		}
		c.min = min(c.min, v)
		c.max = max(c.max, v)
	}
	c.finalized = true
	return nil
}

// Values returns the stored rows. NaN marks a missing value.
func (c *RawFloatColumn) Values() []float32 { return c.values }

// Range returns the minimum and maximum non-missing value. ok is false when
// every row is missing or the column is not finalized.
func (c *RawFloatColumn) Range() (lo, hi float32, ok bool) {
	return c.min, c.max, c.hasRange
}

func (c *RawFloatColumn) MemoryUsage() int64 {
	return int64(cap(c.values) * 4)
}
