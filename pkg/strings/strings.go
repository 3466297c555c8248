// Package strings holds the byte-level helpers the TSV parser uses on its hot path
package strings

import (
	"fmt"
	"sync"
	"unsafe"
)

// BytesToString converts byte slice to string without allocation.
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice while the string is in use.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Builder accumulates formatted output in a reusable buffer
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// Write implements io.Writer interface
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string. It aliases the buffer until the next Reset.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Reset resets the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// TrimSpace removes leading and trailing whitespace
func TrimSpace(s string) string {
	start := 0
	end := len(s)

	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}

	return s[start:end]
}

// isSpace checks if a byte is a whitespace character
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// SplitBytes splits line on delim into dst, reusing dst's backing array.
// The returned fields alias line.
func SplitBytes(line []byte, delim byte, dst [][]byte) [][]byte {
	dst = dst[:0]
	start := 0
	for i, c := range line {
		if c == delim {
			dst = append(dst, line[start:i])
			start = i + 1
		}
	}
	return append(dst, line[start:])
}

// Intern deduplicates strings so repeated values share one allocation.
// It is not safe for concurrent use.
type Intern struct {
	strings map[string]string
}

// NewIntern creates a new string interner
func NewIntern() *Intern {
	return &Intern{
		strings: make(map[string]string),
	}
}

// GetBytes returns the interned string equal to b, copying b on first sight.
func (intern *Intern) GetBytes(b []byte) string {
	// map lookup with a converted []byte key does not allocate
	if interned, exists := intern.strings[string(b)]; exists {
		return interned
	}
	cloned := string(b)
	intern.strings[cloned] = cloned
	return cloned
}

// Size returns the number of interned strings
func (intern *Intern) Size() int {
	return len(intern.strings)
}

var builderPool = sync.Pool{
	New: func() any { return NewBuilder(1024) },
}

// Sprintf formats into a pooled builder and returns an owned copy.
// Error messages on the parse path go through here.
func Sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	builder := builderPool.Get().(*Builder)
	builder.Reset()
	fmt.Fprintf(builder, format, args...)
	out := string(builder.buf)
	if cap(builder.buf) <= 64<<10 {
		builderPool.Put(builder)
	}
	return out
}
