package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolReset(t *testing.T) {
	resets := 0
	p := New(
		func() []int { return make([]int, 0, 8) },
		func(s []int) { resets++ },
	)

	s := p.Get()
	s = append(s, 1, 2, 3)
	p.Put(s)

	assert.Equal(t, 1, resets)
	allocated, inUse, _ := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(0), inUse)
}

func TestBufferPoolBuckets(t *testing.T) {
	bp := NewBufferPool()

	tests := []struct {
		size        int
		expectedCap int
	}{
		{100, 4096},
		{4096, 4096},
		{4097, 16384},
		{1 << 20, 1 << 20},
		{32 << 20, 32 << 20},
	}

	for _, tt := range tests {
		buf := bp.Get(tt.size)
		assert.Len(t, buf, tt.size)
		assert.Equal(t, tt.expectedCap, cap(buf))
		bp.Put(buf)
	}
}

func TestBufferPoolConcurrent(t *testing.T) {
	bp := NewBufferPool()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf := bp.Get(64 * 1024)
				buf[0] = byte(j)
				bp.Put(buf)
			}
		}()
	}
	wg.Wait()
}
