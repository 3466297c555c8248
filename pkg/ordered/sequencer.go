// Package ordered provides a handoff primitive that lets producers finish
// in any order while a single consumer drains results in index order.
package ordered

import (
	"errors"
	"sync"

	"github.com/ajitpratap0/tsvstore/pkg/storeerrors"
)

// ErrDrained is returned by Take once every slot has been taken.
var ErrDrained = errors.New("ordered: all slots drained")

// Sequencer holds one slot per expected result. Producers Put into their
// own slot from any goroutine; one consumer Takes slots strictly in index
// order, blocking until the next slot is filled or the sequencer failed.
type Sequencer[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	slots    []T
	state    []slotState
	next     int
	ready    int
	err      error
	onChange func(pending int)
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotFilled
	slotTaken
)

// New creates a sequencer with n slots.
func New[T any](n int) *Sequencer[T] {
	s := &Sequencer[T]{
		slots: make([]T, n),
		state: make([]slotState, n),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// OnChange registers fn, called under the lock with the number of filled
// but untaken slots after every Put and Take. Must be set before use.
func (s *Sequencer[T]) OnChange(fn func(pending int)) {
	s.onChange = fn
}

// Len returns the number of slots.
func (s *Sequencer[T]) Len() int { return len(s.slots) }

// Put stores v in slot i and wakes the consumer. A slot accepts exactly
// one value. Put after Fail drops v and returns the failure.
func (s *Sequencer[T]) Put(i int, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.slots) {
		return storeerrors.New(storeerrors.ErrorTypeValidation, "slot index out of range").
			WithDetail("slot", i).
			WithDetail("slots", len(s.slots))
	}
	if s.err != nil {
		return s.err
	}
	if s.state[i] != slotEmpty {
		return storeerrors.New(storeerrors.ErrorTypeState, "slot already filled").
			WithDetail("slot", i)
	}

	s.slots[i] = v
	s.state[i] = slotFilled
	s.ready++
	s.notify()
	s.cond.Broadcast()
	return nil
}

// Take blocks until the next slot in index order is filled, then clears it
// and returns its value and index. It returns the failure passed to Fail,
// or ErrDrained after the last slot.
func (s *Sequencer[T]) Take() (T, int, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.slots) {
		return zero, s.next, ErrDrained
	}
	for s.err == nil && s.state[s.next] != slotFilled {
		s.cond.Wait()
	}
	if s.err != nil {
		return zero, s.next, s.err
	}

	i := s.next
	v := s.slots[i]
	s.slots[i] = zero
	s.state[i] = slotTaken
	s.ready--
	s.next++
	s.notify()
	return v, i, nil
}

// Fail records err and wakes every waiter. Only the first failure is kept.
// Filled slots are released.
func (s *Sequencer[T]) Fail(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}
	s.err = err

	var zero T
	for i := range s.slots {
		s.slots[i] = zero
	}
	s.ready = 0
	s.notify()
	s.cond.Broadcast()
}

// Err returns the recorded failure, if any.
func (s *Sequencer[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pending returns the number of filled slots not yet taken.
func (s *Sequencer[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Sequencer[T]) notify() {
	if s.onChange != nil {
		s.onChange(s.ready)
	}
}
