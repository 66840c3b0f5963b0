// Package ring implements the bounded per-symbol snapshot FIFO: capacity
// 244 ((60+1)*4), oldest evicted on overflow, no concurrent-mutation
// guarantees of its own (the pipeline serializes access with a mutex —
// see internal/pipeline).
package ring

import "github.com/cptdom/whiplash/internal/model"

// Capacity oversizes a 1Hz feed over the 60-second analysis window by
// ~4x to tolerate bursts of multiple messages per second.
const Capacity = (60 + 1) * 4

// Buffer is a fixed-capacity circular FIFO of Snapshots, newest at the
// back. It is not safe for concurrent use; callers serialize access.
type Buffer struct {
	data []model.Snapshot
	head int // index of the oldest element
	size int
}

// New returns an empty Buffer at the fixed capacity.
func New() *Buffer {
	return &Buffer{data: make([]model.Snapshot, Capacity)}
}

// Len reports the number of snapshots currently held.
func (b *Buffer) Len() int { return b.size }

// PushBack appends a snapshot, evicting the oldest one if the buffer is
// already at capacity.
func (b *Buffer) PushBack(s model.Snapshot) {
	tail := (b.head + b.size) % Capacity
	b.data[tail] = s
	if b.size < Capacity {
		b.size++
	} else {
		b.head = (b.head + 1) % Capacity
	}
}

// PeekBack returns the newest snapshot and true, or the zero value and
// false if the buffer is empty.
func (b *Buffer) PeekBack() (model.Snapshot, bool) {
	if b.size == 0 {
		return model.Snapshot{}, false
	}
	idx := (b.head + b.size - 1) % Capacity
	return b.data[idx], true
}

// PeekFront returns the oldest snapshot and true, or the zero value and
// false if the buffer is empty.
func (b *Buffer) PeekFront() (model.Snapshot, bool) {
	if b.size == 0 {
		return model.Snapshot{}, false
	}
	return b.data[b.head], true
}

// At returns the i-th snapshot counting from the back (At(0) is the
// newest, At(Len()-1) is the oldest). It panics if i is out of range.
func (b *Buffer) At(i int) model.Snapshot {
	if i < 0 || i >= b.size {
		panic("ring: index out of range")
	}
	idx := (b.head + b.size - 1 - i) % Capacity
	return b.data[idx]
}

// ReverseEach iterates from newest to oldest, calling fn for each
// snapshot in turn. It stops early if fn returns false. ReverseEach
// never mutates the buffer, so read-only callers need no separate copy;
// like every Buffer method, it must not run concurrently with appends.
func (b *Buffer) ReverseEach(fn func(i int, s model.Snapshot) bool) {
	for i := 0; i < b.size; i++ {
		if !fn(i, b.At(i)) {
			return
		}
	}
}

// Clone returns an independent copy of the buffer's logical contents.
// It is an O(capacity) snapshot used by callers that want scratch
// mutation without disturbing the original.
func (b *Buffer) Clone() *Buffer {
	clone := &Buffer{data: make([]model.Snapshot, Capacity), head: b.head, size: b.size}
	copy(clone.data, b.data)
	return clone
}

// Snapshot returns a newest-first slice copy of the buffer's contents.
func (b *Buffer) Snapshot() []model.Snapshot {
	out := make([]model.Snapshot, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.At(i)
	}
	return out
}
