package pool_test

import (
	"fmt"

	"github.com/ajitpratap0/tsvstore/pkg/pool"
)

// Example demonstrates a typed pool for reusable field slices.
func Example() {
	fields := pool.New(
		func() [][]byte { return make([][]byte, 0, 64) },
		nil,
	)

	f := fields.Get()
	f = append(f, []byte("1.5"), []byte("x"))
	fmt.Println(len(f))
	fields.Put(f[:0])

	// Output:
	// 2
}

// ExampleBufferPool shows how buffers are served from size buckets.
func ExampleBufferPool() {
	buffers := pool.NewBufferPool()

	buf := buffers.Get(2048)
	fmt.Println(len(buf), cap(buf))
	buffers.Put(buf)

	// Output:
	// 2048 4096
}
