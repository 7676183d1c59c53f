// Package dedupe remembers matchup IDs so a resubmitted matchup is applied
// at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxSize is the number of IDs remembered when WithMaxSize is not given.
const DefaultMaxSize = 50000

// Deduper records seen matchup IDs.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded and records it
	// if not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the matchup can be submitted again, e.g.
	// after it was rejected.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type node struct {
	id         string
	prev, next *node
}

// inMemoryDeduper keeps IDs in a map. When bounded, a doubly linked list in
// insertion order drives FIFO eviction of the oldest ID.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*node
	head    *node // newest
	tail    *node // oldest
	maxSize int   // <= 0 means unbounded
	size    atomic.Int64
}

// NewInMemory creates an in-memory deduper.
func NewInMemory(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[id] = nil
		d.size.Add(1)
		return false
	}

	if len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	n := &node{id: id, next: d.head}
	if d.head != nil {
		d.head.prev = n
	}
	d.head = n
	if d.tail == nil {
		d.tail = n
	}
	d.seen[id] = n
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, ok := d.seen[id]
	if !ok {
		return
	}
	delete(d.seen, id)
	if n != nil {
		d.unlink(n)
	}
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	n := d.tail
	if n == nil {
		return
	}
	delete(d.seen, n.id)
	d.unlink(n)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
