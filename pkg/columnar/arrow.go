package columnar

import (
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

// Field metadata keys set on Arrow fields.
const (
	MetadataKind   = "tsvstore.kind"
	MetadataBounds = "tsvstore.bounds"
)

// ArrowRecord builds an arrow.Record with one field per column in
// declaration order. Binned columns become uint16 bin ids with their bounds
// in field metadata, raw floats become float32 with missing values as
// nulls, strings become utf8. The caller must Release the record.
func (s *Store) ArrowRecord(alloc memory.Allocator) (arrow.Record, error) {
	if alloc == nil {
		alloc = memory.NewGoAllocator()
	}

	fields := make([]arrow.Field, 0, len(s.names))
	arrays := make([]arrow.Array, 0, len(s.names))
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	for _, name := range s.names {
		col := s.columns[name]
		arr, field, err := arrowColumn(alloc, name, Underlying(col))
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		arrays = append(arrays, arr)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewRecord(schema, arrays, int64(s.numRows)), nil
}

func arrowColumn(alloc memory.Allocator, name string, col Column) (arrow.Array, arrow.Field, error) {
	switch c := col.(type) {
	case *BinnedFloatColumn:
		b := array.NewUint16Builder(alloc)
		defer b.Release()
		b.AppendValues(c.Bins(), nil)

		bounds := make([]string, len(c.Bounds()))
		for i, v := range c.Bounds() {
			bounds[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		md := arrow.NewMetadata(
			[]string{MetadataKind, MetadataBounds},
			[]string{KindBinnedFloat.String(), strings.Join(bounds, ",")},
		)
		return b.NewArray(), arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint16, Metadata: md}, nil

	case *RawFloatColumn:
		b := array.NewFloat32Builder(alloc)
		defer b.Release()
		values := c.Values()
		valid := make([]bool, len(values))
		for i, v := range values {
			valid[i] = !math.IsNaN(float64(v))
		}
		b.AppendValues(values, valid)
		md := arrow.NewMetadata([]string{MetadataKind}, []string{KindRawFloat.String()})
		return b.NewArray(), arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float32, Nullable: true, Metadata: md}, nil

	case *StringColumn:
		b := array.NewStringBuilder(alloc)
		defer b.Release()
		b.Reserve(len(c.Codes()))
		for _, code := range c.Codes() {
			b.Append(c.Dictionary()[code])
		}
		md := arrow.NewMetadata([]string{MetadataKind}, []string{KindString.String()})
		return b.NewArray(), arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Metadata: md}, nil

	default:
		return nil, arrow.Field{}, storeerrors.New(storeerrors.ErrorTypeInternal, "column type has no arrow mapping").
			WithDetail("column", name)
	}
}
