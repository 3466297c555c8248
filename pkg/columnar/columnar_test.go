package columnar

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

var nan = float32(math.NaN())

func floats(v ...float32) Values { return Values{Floats: v} }

func strs(v ...string) Values { return Values{Strings: v} }

func TestBinnedFloatColumnDistinctValues(t *testing.T) {
	col := NewBinnedFloatColumn("age", DefaultMaxBins)
	require.NoError(t, col.Add(floats(3, 1, nan)))
	require.NoError(t, col.Add(floats(2, 3)))
	require.NoError(t, col.Finalize())

	assert.Equal(t, []float32{1, 2, 3}, col.Bounds())
	assert.Equal(t, []uint16{3, 1, 0, 2, 3}, col.Bins())
	assert.Equal(t, 4, col.NumBins())
	assert.Equal(t, 5, col.Len())
}

func TestBinnedFloatColumnQuantiles(t *testing.T) {
	col := NewBinnedFloatColumn("x", 5)
	values := make([]float32, 100)
	for i := range values {
		values[i] = float32(i)
	}
	require.NoError(t, col.Add(floats(values...)))
	require.NoError(t, col.Finalize())

	assert.Equal(t, []float32{24, 49, 74, 99}, col.Bounds())
	bins := col.Bins()
	assert.Equal(t, uint16(1), bins[0])
	assert.Equal(t, uint16(1), bins[24])
	assert.Equal(t, uint16(2), bins[25])
	assert.Equal(t, uint16(4), bins[99])
}

func TestBinnedFloatColumnSkewedQuantilesDeduplicate(t *testing.T) {
	col := NewBinnedFloatColumn("x", 4)
	values := make([]float32, 0, 100)
	for i := 0; i < 90; i++ {
		values = append(values, 0)
	}
	for i := 0; i < 10; i++ {
		values = append(values, float32(i+1))
	}
	require.NoError(t, col.Add(floats(values...)))
	require.NoError(t, col.Finalize())

	bounds := col.Bounds()
	assert.LessOrEqual(t, len(bounds), 3)
	assert.Equal(t, float32(10), bounds[len(bounds)-1])
	for i := 1; i < len(bounds); i++ {
		assert.Less(t, bounds[i-1], bounds[i])
	}
}

func TestBinnedFloatColumnAllMissing(t *testing.T) {
	col := NewBinnedFloatColumn("x", DefaultMaxBins)
	require.NoError(t, col.Add(floats(nan, nan)))
	require.NoError(t, col.Finalize())

	assert.Empty(t, col.Bounds())
	assert.Equal(t, []uint16{0, 0}, col.Bins())
}

func TestRawFloatColumn(t *testing.T) {
	col := NewRawFloatColumn("price")
	require.NoError(t, col.Add(floats(2.5, nan, -1)))
	require.NoError(t, col.Finalize())

	lo, hi, ok := col.Range()
	require.True(t, ok)
	assert.Equal(t, float32(-1), lo)
	assert.Equal(t, float32(2.5), hi)
	assert.Equal(t, 3, col.Len())
	assert.True(t, math.IsNaN(float64(col.Values()[1])))
}

func TestStringColumnDictionary(t *testing.T) {
	col := NewStringColumn("country")
	require.NoError(t, col.Add(strs("fr", "de", "fr")))
	require.NoError(t, col.Add(strs("at")))
	require.NoError(t, col.Finalize())

	assert.Equal(t, []string{"at", "de", "fr"}, col.Dictionary())
	assert.Equal(t, []uint32{2, 1, 2, 0}, col.Codes())
	assert.Equal(t, "de", col.Value(1))
}

func TestFinalizeIsOneShot(t *testing.T) {
	for _, kind := range []Kind{KindBinnedFloat, KindRawFloat, KindString} {
		t.Run(kind.String(), func(t *testing.T) {
			col, err := New("c", kind, Options{})
			require.NoError(t, err)
			require.NoError(t, col.Finalize())
			assert.True(t, col.Finalized())

			err = col.Finalize()
			assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeState))

			err = col.Add(Values{})
			assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeState))
		})
	}
}

func TestAddRejectsWrongValues(t *testing.T) {
	col := NewRawFloatColumn("x")
	err := col.Add(strs("a"))
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeValidation))

	scol := NewStringColumn("s")
	err = scol.Add(floats(1))
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeValidation))
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New("x", KindBinnedFloat, Options{MaxBins: 1})
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeConfig))

	_, err = New("x", Kind(42), Options{})
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeValidation))
}

type wrapped struct {
	Column
}

func (w wrapped) Unwrap() Column { return w.Column }

func buildStore(t *testing.T) *Store {
	t.Helper()
	a := NewBinnedFloatColumn("a", DefaultMaxBins)
	c := NewRawFloatColumn("c")
	b := NewStringColumn("b")
	require.NoError(t, a.Add(floats(1, 2, nan)))
	require.NoError(t, c.Add(floats(0.5, nan, 1.5)))
	require.NoError(t, b.Add(strs("x", "y", "x")))
	for _, col := range []Column{a, c, b} {
		require.NoError(t, col.Finalize())
	}
	store, err := NewStore([]Column{a, wrapped{c}, b})
	require.NoError(t, err)
	return store
}

func TestStore(t *testing.T) {
	store := buildStore(t)

	assert.Equal(t, []string{"a", "c", "b"}, store.Names())
	assert.Equal(t, 3, store.NumRows())
	assert.Equal(t, 3, store.NumColumns())
	assert.Positive(t, store.MemoryUsage())

	raw, err := store.RawFloatColumn("c")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), raw.Values()[0])

	_, err = store.StringColumn("a")
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeValidation))

	_, err = store.BinnedFloatColumn("missing")
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeNotFound))
}

func TestNewStoreChecksColumns(t *testing.T) {
	pending := NewRawFloatColumn("p")
	_, err := NewStore([]Column{pending})
	assert.True(t, storeerrors.IsType(err, storeerrors.ErrorTypeState))

	short := NewRawFloatColumn("short")
	long := NewRawFloatColumn("long")
	require.NoError(t, short.Add(floats(1)))
	require.NoError(t, long.Add(floats(1, 2)))
	require.NoError(t, short.Finalize())
	require.NoError(t, long.Finalize())
	_, err = NewStore([]Column{short, long})
	require.Error(t, err)
	v, ok := storeerrors.Detail(err, "column")
	require.True(t, ok)
	assert.Equal(t, "long", v)
}

func TestSummary(t *testing.T) {
	sum := buildStore(t).Summary()

	require.Len(t, sum.Columns, 3)
	assert.Equal(t, 3, sum.Rows)

	a := sum.Columns[0]
	assert.Equal(t, "binned_float", a.Kind)
	assert.Equal(t, 3, a.Bins)
	assert.Equal(t, 1, a.Missing)

	c := sum.Columns[1]
	require.NotNil(t, c.Min)
	assert.Equal(t, float32(0.5), *c.Min)
	assert.Equal(t, float32(1.5), *c.Max)

	assert.Equal(t, 2, sum.Columns[2].Cardinality)
}

func TestArrowRecord(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	rec, err := buildStore(t).ArrowRecord(alloc)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(3), rec.NumCols())

	schema := rec.Schema()
	assert.Equal(t, arrow.PrimitiveTypes.Uint16, schema.Field(0).Type)
	bounds, ok := schema.Field(0).Metadata.GetValue(MetadataBounds)
	require.True(t, ok)
	assert.Equal(t, "1,2", bounds)

	bins := rec.Column(0).(*array.Uint16)
	assert.Equal(t, []uint16{1, 2, 0}, bins.Uint16Values())

	raw := rec.Column(1).(*array.Float32)
	assert.True(t, raw.IsNull(1))
	assert.Equal(t, float32(1.5), raw.Value(2))

	s := rec.Column(2).(*array.String)
	assert.Equal(t, "y", s.Value(1))
}
