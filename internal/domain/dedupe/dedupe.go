// Package dedupe remembers client action ids so a repeated click is applied once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 256

// Deduper records seen action ids to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a failed action can be retried with the same id.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// slot is one position of the eviction ring.
type slot struct {
	id  string
	seq uint64
}

// inMemoryDeduper keeps ids in a map; bounded mode tracks insertion order in a
// ring so the oldest id is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64 // id -> insertion sequence
	ring    []slot
	next    int
	seq     uint64
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	d.seq++
	if d.ring != nil {
		d.evictLocked()
		d.ring[d.next] = slot{id: id, seq: d.seq}
		d.next = (d.next + 1) % len(d.ring)
	}
	d.seen[id] = d.seq
	return false
}

// evictLocked forgets the id held by the ring position about to be
// overwritten, unless that id was unrecorded or recorded again since.
func (d *inMemoryDeduper) evictLocked() {
	old := d.ring[d.next]
	if seq, ok := d.seen[old.id]; ok && seq == old.seq {
		delete(d.seen, old.id)
	}
}

// Unrecord removes an id from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The ring slot goes stale; evictLocked skips it by sequence.
	delete(d.seen, id)
}

// Size returns the current number of remembered ids.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
