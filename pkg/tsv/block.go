// Package tsv parses delimited text files into typed row blocks.
//
// A Layout names the header positions to extract: float fields become
// float32 slices (missing values as NaN), string fields become string
// slices. One call to ParseFile reads one whole file into one Block.
package tsv

// Layout describes which fields of each line a parse extracts.
type Layout struct {
	// NumFields is the exact number of fields every line must have.
	// Zero disables the check beyond the largest referenced index.
	NumFields int
	// FloatFields lists header indices parsed as floats, by float position.
	FloatFields []int
	// StringFields lists header indices kept as strings, by string position.
	StringFields []int
}

// minFields returns the smallest field count a line may have.
func (l Layout) minFields() int {
	if l.NumFields > 0 {
		return l.NumFields
	}
	n := 0
	for _, idx := range l.FloatFields {
		n = max(n, idx+1)
	}
	for _, idx := range l.StringFields {
		n = max(n, idx+1)
	}
	return n
}

// Block holds the parsed contents of one file. Floats[i] and Strings[j]
// all have length Rows.
type Block struct {
	Path    string
	Rows    int
	Floats  [][]float32
	Strings [][]string
}

func newBlock(path string, layout Layout) *Block {
	b := &Block{
		Path:    path,
		Floats:  make([][]float32, len(layout.FloatFields)),
		Strings: make([][]string, len(layout.StringFields)),
	}
	for i := range b.Floats {
		b.Floats[i] = make([]float32, 0, 1024)
	}
	for i := range b.Strings {
		b.Strings[i] = make([]string, 0, 1024)
	}
	return b
}
