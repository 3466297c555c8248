package columnar

import (
	"math"
	"sort"
)

// BinnedFloatColumn reduces float values to bin ids at finalization.
type BinnedFloatColumn struct {
	name    string
	maxBins int

	raw []float32

	bounds    []float32
	bins      []uint16
	finalized bool
}

// NewBinnedFloatColumn creates an empty binned column with the given bin
// budget, bin 0 included.
func NewBinnedFloatColumn(name string, maxBins int) *BinnedFloatColumn {
	return &BinnedFloatColumn{
		name:    name,
		maxBins: maxBins,
		raw:     make([]float32, 0, 1024),
	}
}

func (c *BinnedFloatColumn) Name() string    { return c.name }
func (c *BinnedFloatColumn) Kind() Kind      { return KindBinnedFloat }
func (c *BinnedFloatColumn) Finalized() bool { return c.finalized }

func (c *BinnedFloatColumn) Len() int {
	if c.finalized {
		return len(c.bins)
	}
	return len(c.raw)
}

func (c *BinnedFloatColumn) Add(values Values) error {
	if c.finalized {
		return errFinalized(c.name)
	}
	if values.Floats == nil && len(values.Strings) > 0 {
		return errWrongValues(c.name, KindBinnedFloat)
	}
	c.raw = append(c.raw, values.Floats...)
	return nil
}

// Finalize computes the bin upper bounds and encodes every row. Raw values
// are released.
func (c *BinnedFloatColumn) Finalize() error {
	if c.finalized {
		return errFinalized(c.name)
	}

	sorted := make([]float32, 0, len(c.raw))
	for _, v := range c.raw {
		if !math.IsNaN(float64(v)) {
			sorted = append(sorted, v)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	c.bounds = computeBounds(sorted, c.maxBins-1)
	c.bins = make([]uint16, len(c.raw))
	for i, v := range c.raw {
		c.bins[i] = c.Bin(v)
	}

	c.raw = nil
	c.finalized = true
	return nil
}

// computeBounds returns at most budget strictly increasing upper bounds
// over sorted. The last bound is always the maximum value.
func computeBounds(sorted []float32, budget int) []float32 {
	n := len(sorted)
	if n == 0 || budget <= 0 {
		return nil
	}

	distinct := make([]float32, 0, budget+1)
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
			if len(distinct) > budget {
				break
			}
		}
	}
	if len(distinct) <= budget {
		return distinct
	}

	bounds := make([]float32, 0, budget)
	for k := 1; k <= budget; k++ {
		idx := (k*n+budget-1)/budget - 1
		v := sorted[idx]
		if len(bounds) == 0 || v > bounds[len(bounds)-1] {
			bounds = append(bounds, v)
		}
	}
	return bounds
}

// Bin returns the bin id a value maps to: 0 for NaN, otherwise one plus the
// index of the first upper bound not below the value. Values above the last
// bound fall into the last bin.
func (c *BinnedFloatColumn) Bin(v float32) uint16 {
	if math.IsNaN(float64(v)) || len(c.bounds) == 0 {
		return 0
	}
	i := sort.Search(len(c.bounds), func(i int) bool { return v <= c.bounds[i] })
	if i == len(c.bounds) {
		i--
	}
	return uint16(i + 1) //nolint:gosec // G115: bounds never exceed 65535 entries
}

// Bins returns the encoded rows. Valid after Finalize.
func (c *BinnedFloatColumn) Bins() []uint16 { return c.bins }

// Bounds returns the upper bound of bins 1..NumBins-1. Valid after Finalize.
func (c *BinnedFloatColumn) Bounds() []float32 { return c.bounds }

// NumBins returns the number of bins in use, the missing bin included.
func (c *BinnedFloatColumn) NumBins() int { return len(c.bounds) + 1 }

func (c *BinnedFloatColumn) MemoryUsage() int64 {
	return int64(cap(c.raw)*4 + cap(c.bins)*2 + cap(c.bounds)*4)
}
