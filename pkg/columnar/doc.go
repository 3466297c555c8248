// Package columnar holds the in-memory column encodings produced by a load
// and the immutable Store that groups them.
//
// # Column variants
//
// Three variants implement the Column capability:
//
//   - BinnedFloatColumn: float values reduced to uint16 bin ids over
//     quantile upper bounds. Bin 0 is reserved for missing values.
//   - RawFloatColumn: float32 values kept as given.
//   - StringColumn: strings dictionary-encoded into uint32 codes over a
//     sorted dictionary.
//
// A column accumulates values through Add and is frozen exactly once by
// Finalize. Add after Finalize and a second Finalize fail with a state
// error. Columns carry no locks: a single column must never receive
// concurrent Add calls.
//
// # Store
//
// NewStore groups finalized columns that agree on their row count:
//
//	store, err := columnar.NewStore(cols)
//	if err != nil {
//	    return err
//	}
//	age, err := store.BinnedFloatColumn("age")
//
// ArrowRecord exposes the store as an arrow.Record for hand-off to the
// training phase, and Summary reports per-column statistics.
package columnar
