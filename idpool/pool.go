package idpool

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/n3k/nbitmap/bitmap"
)

// ErrExhausted is returned by Acquire when every eligible ID is held.
var ErrExhausted = errors.New("idpool: no free id")

// Pool hands out small integer IDs from a fixed range, lowest free ID
// first. It wraps a bitmap.Bitmap and holds a single lock across the
// find-free-slot and claim steps, which the bitmap itself does not do.
//
// Pool is safe for concurrent use.
type Pool struct {
	mu    sync.Mutex
	bits  *bitmap.Bitmap
	inUse atomic.Int64
}

// New creates a Pool with at least size IDs. The capacity follows the
// bitmap rounding rules (next power of two, minimum 64).
func New(size int) *Pool {
	return &Pool{bits: bitmap.New(size)}
}

// NewWithReserved creates a Pool like New, but Acquire never hands
// out the first reserved IDs. The reserved range is left to the
// caller, typically for header or metadata slots.
func NewWithReserved(size, reserved int) *Pool {
	return &Pool{bits: bitmap.NewWithReserved(size, reserved)}
}

// Acquire claims and returns the lowest free ID.
// It returns ErrExhausted when the pool is full.
func (p *Pool) Acquire() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, ok := p.bits.FindFreeSlot()
	if !ok {
		return 0, errors.WithStack(ErrExhausted)
	}
	p.bits.Set(id)
	p.inUse.Inc()
	return id, nil
}

// Release returns a held ID to the pool. Releasing an ID that is not
// held, or one outside the pool range, is a programmer error and
// panics.
func (p *Pool) Release(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.bits.IsSet(id) {
		panic("idpool: release of id that is not held")
	}
	p.bits.Unset(id)
	p.inUse.Dec()
}

// InUse returns the number of IDs currently held. It does not take
// the pool lock.
func (p *Pool) InUse() int64 {
	return p.inUse.Load()
}

// Capacity returns the total number of addressable IDs, including any
// reserved prefix.
func (p *Pool) Capacity() int {
	return p.bits.BitSize()
}
