package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/tsvstore/pkg/columnar"
	"github.com/ajitpratap0/tsvstore/pkg/tsv"
)

// countingParser counts calls and delegates to a real parser after an
// optional per-path hook.
type countingParser struct {
	inner  *tsv.Parser
	calls  atomic.Int32
	before func(ctx context.Context, path string) error
}

func (p *countingParser) ParseFile(ctx context.Context, path string, layout tsv.Layout) (*tsv.Block, error) {
	p.calls.Add(1)
	if p.before != nil {
		if err := p.before(ctx, path); err != nil {
			return nil, err
		}
	}
	return p.inner.ParseFile(ctx, path, layout)
}

func randomLatency(max time.Duration) func(context.Context, string) error {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(ctx context.Context, _ string) error {
		mu.Lock()
		d := time.Duration(rng.Int63n(int64(max)))
		mu.Unlock()
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// probe records how the pipeline drives one column.
type probe struct {
	columnar.Column
	t *testing.T

	inAdd     atomic.Int32
	adds      atomic.Int32
	finalizes atomic.Int32
	addsAtFin atomic.Int32
}

func (p *probe) Add(v columnar.Values) error {
	if n := p.inAdd.Add(1); n != 1 {
		assert.Fail(p.t, "concurrent Add", "column %s", p.Name())
	}
	defer p.inAdd.Add(-1)
	if p.finalizes.Load() > 0 {
		assert.Fail(p.t, "Add after Finalize", "column %s", p.Name())
	}
	time.Sleep(50 * time.Microsecond)
	p.adds.Add(1)
	return p.Column.Add(v)
}

func (p *probe) Finalize() error {
	p.addsAtFin.Store(p.adds.Load())
	p.finalizes.Add(1)
	return p.Column.Finalize()
}

func (p *probe) Unwrap() columnar.Column { return p.Column }

type probeFactory struct {
	t      *testing.T
	mu     sync.Mutex
	probes map[string]*probe
}

func newProbeFactory(t *testing.T) *probeFactory {
	return &probeFactory{t: t, probes: make(map[string]*probe)}
}

func (f *probeFactory) New(name string, kind columnar.Kind, opts columnar.Options) (columnar.Column, error) {
	col, err := columnar.New(name, kind, opts)
	if err != nil {
		return nil, err
	}
	p := &probe{Column: col, t: f.t}
	f.mu.Lock()
	f.probes[name] = p
	f.mu.Unlock()
	return p, nil
}

// failingColumn rejects every Add.
type failingColumn struct {
	columnar.Column
	err error
}

func (c *failingColumn) Add(columnar.Values) error { return c.err }

func (c *failingColumn) Unwrap() columnar.Column { return c.Column }
