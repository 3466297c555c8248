package columnar

import (
	"sort"
)

// StringColumn dictionary-encodes its values at finalization.
type StringColumn struct {
	name string
	raw  []string

	dict      []string
	codes     []uint32
	finalized bool
}

// NewStringColumn creates an empty string column.
func NewStringColumn(name string) *StringColumn {
	return &StringColumn{
		name: name,
		raw:  make([]string, 0, 1024),
	}
}

func (c *StringColumn) Name() string    { return c.name }
func (c *StringColumn) Kind() Kind      { return KindString }
func (c *StringColumn) Finalized() bool { return c.finalized }

func (c *StringColumn) Len() int {
	if c.finalized {
		return len(c.codes)
	}
	return len(c.raw)
}

func (c *StringColumn) Add(values Values) error {
	if c.finalized {
		return errFinalized(c.name)
	}
	if values.Strings == nil && len(values.Floats) > 0 {
		return errWrongValues(c.name, KindString)
	}
	c.raw = append(c.raw, values.Strings...)
	return nil
}

// Finalize builds a sorted dictionary and replaces every row by its code.
func (c *StringColumn) Finalize() error {
	if c.finalized {
		return errFinalized(c.name)
	}

	index := make(map[string]uint32)
	for _, v := range c.raw {
		if _, ok := index[v]; !ok {
			index[v] = 0
			c.dict = append(c.dict, v)
		}
	}
	sort.Strings(c.dict)
	for i, v := range c.dict {
		index[v] = uint32(i) //nolint:gosec // G115: dictionary size is bounded by row count
	}

	c.codes = make([]uint32, len(c.raw))
	for i, v := range c.raw {
		c.codes[i] = index[v]
	}

	c.raw = nil
	c.finalized = true
	return nil
}

// Dictionary returns the sorted distinct values. Valid after Finalize.
func (c *StringColumn) Dictionary() []string { return c.dict }

// Codes returns the per-row dictionary codes. Valid after Finalize.
func (c *StringColumn) Codes() []uint32 { return c.codes }

// Value returns the string of row i. Valid after Finalize.
func (c *StringColumn) Value(i int) string { return c.dict[c.codes[i]] }

func (c *StringColumn) MemoryUsage() int64 {
	var total int64
	if c.finalized {
		for _, v := range c.dict {
			total += int64(len(v)) + 16
		}
		return total + int64(cap(c.codes)*4)
	}
	for _, v := range c.raw {
		total += int64(len(v)) + 16
	}
	return total
}
