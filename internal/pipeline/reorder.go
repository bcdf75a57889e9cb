// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sync"

	"github.com/weiuou/pdf-ocr/pkg/types"
)

// reorderBuffer restores selection order over results arriving from
// concurrent workers. Capacity bounds how far ahead of the next
// undelivered page the workers may run before Put blocks.
type reorderBuffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[int]types.PageResult
	order    []int
	pos      int
	capacity int
	aborted  bool
	closed   bool
}

func newReorderBuffer(selection []int, capacity int) *reorderBuffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &reorderBuffer{
		pending:  make(map[int]types.PageResult, capacity),
		order:    selection,
		capacity: capacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Put hands a finished page to the buffer. It blocks while the buffer is
// full, unless r is the page the consumer is waiting for or the run has
// been aborted. The next-expected exception keeps a full buffer from
// starving the consumer; the abort exception lets in-flight workers
// deliver after dispatch stops.
func (b *reorderBuffer) Put(r types.PageResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.pending) >= b.capacity && !b.aborted && !b.isNext(r.Page) {
		b.cond.Wait()
	}
	b.pending[r.Page] = r
	b.cond.Broadcast()
}

func (b *reorderBuffer) isNext(page int) bool {
	return b.pos < len(b.order) && b.order[b.pos] == page
}

// Next returns results in selection order. ok is false once every
// selected page has been delivered, or the buffer was closed with the
// next page still missing.
func (b *reorderBuffer) Next() (types.PageResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if b.pos >= len(b.order) {
			return types.PageResult{}, false
		}
		if r, ok := b.pending[b.order[b.pos]]; ok {
			delete(b.pending, b.order[b.pos])
			b.pos++
			b.cond.Broadcast()
			return r, true
		}
		if b.closed {
			return types.PageResult{}, false
		}
		b.cond.Wait()
	}
}

// Abort lifts the capacity limit so workers finishing after a fatal
// error cannot block on a full buffer.
func (b *reorderBuffer) Abort() {
	b.mu.Lock()
	b.aborted = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Close marks that no further results will arrive.
func (b *reorderBuffer) Close() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}
