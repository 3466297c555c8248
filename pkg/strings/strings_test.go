package strings

import (
	"fmt"
	"testing"
)

func TestBytesToString(t *testing.T) {
	b := []byte("hello world")
	s := BytesToString(b)

	if s != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", s)
	}

	empty := BytesToString([]byte{})
	if empty != "" {
		t.Errorf("expected empty string, got '%s'", empty)
	}
}

func TestBuilder(t *testing.T) {
	builder := NewBuilder(4)
	fmt.Fprintf(builder, "%s=%d", "rows", 12)

	if result := builder.String(); result != "rows=12" {
		t.Errorf("expected 'rows=12', got '%s'", result)
	}

	builder.Reset()
	if builder.String() != "" {
		t.Errorf("expected empty builder after reset, got %q", builder.String())
	}
}

func TestTrimSpace(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  hello  ", "hello"},
		{"\tname\r\n", "name"},
		{"no_space", "no_space"},
		{"   ", ""},
		{"", ""},
	}

	for _, test := range tests {
		if result := TrimSpace(test.input); result != test.expected {
			t.Errorf("TrimSpace(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestSplitBytes(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"a\tb\tc", []string{"a", "b", "c"}},
		{"a\t\tc", []string{"a", "", "c"}},
		{"single", []string{"single"}},
		{"", []string{""}},
		{"trailing\t", []string{"trailing", ""}},
	}

	var dst [][]byte
	for _, test := range tests {
		dst = SplitBytes([]byte(test.input), '\t', dst)
		if len(dst) != len(test.expected) {
			t.Fatalf("SplitBytes(%q) returned %d fields, expected %d", test.input, len(dst), len(test.expected))
		}
		for i, field := range dst {
			if string(field) != test.expected[i] {
				t.Errorf("SplitBytes(%q)[%d] = %q, expected %q", test.input, i, field, test.expected[i])
			}
		}
	}
}

func TestIntern(t *testing.T) {
	intern := NewIntern()

	buf := []byte("region-eu")
	s1 := intern.GetBytes(buf)
	buf[0] = 'R' // interned copy must not alias the input
	s2 := intern.GetBytes([]byte("region-eu"))

	if s1 != "region-eu" || s2 != "region-eu" {
		t.Errorf("unexpected interned values %q %q", s1, s2)
	}
	if intern.Size() != 1 {
		t.Errorf("expected 1 interned string, got %d", intern.Size())
	}
}

func TestSprintf(t *testing.T) {
	if got := Sprintf("%s: %d", "rows", 42); got != "rows: 42" {
		t.Errorf("unexpected Sprintf result %q", got)
	}
	if got := Sprintf("plain"); got != "plain" {
		t.Errorf("unexpected Sprintf result %q", got)
	}
}

func BenchmarkSplitBytes(b *testing.B) {
	line := []byte("1.5\tfoo\t2.25\tbar\t3.125\tbaz\t4\tqux")
	var dst [][]byte

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = SplitBytes(line, '\t', dst)
	}
}
