package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyBound(t *testing.T) {
	const size = 3
	var running, peak atomic.Int32

	err := Run(context.Background(), size, 30, func(ctx context.Context, i int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(size))
	assert.Positive(t, peak.Load())
}

func TestFirstErrorWins(t *testing.T) {
	first := errors.New("first")
	var started atomic.Int32

	p, ctx := New(context.Background(), 1)
	p.Go(func(context.Context) error {
		started.Add(1)
		return first
	})
	for i := 0; i < 5; i++ {
		p.Go(func(context.Context) error {
			started.Add(1)
			return errors.New("later")
		})
	}

	assert.ErrorIs(t, p.Wait(), first)
	assert.Equal(t, int32(1), started.Load(), "tasks after the failure are skipped")
	assert.Error(t, ctx.Err())
}

func TestRunPassesEveryIndex(t *testing.T) {
	seen := make([]atomic.Bool, 50)
	err := Run(context.Background(), 4, len(seen), func(_ context.Context, i int) error {
		seen[i].Store(true)
		return nil
	})
	require.NoError(t, err)
	for i := range seen {
		assert.True(t, seen[i].Load(), "index %d", i)
	}
}

func TestParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	err := Run(ctx, 2, 3, func(context.Context, int) error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestDefaultSize(t *testing.T) {
	p, _ := New(context.Background(), 0)
	assert.Positive(t, p.Size())
	require.NoError(t, p.Wait())
}
