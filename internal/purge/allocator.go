// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package purge

import (
	"grimm.is/denypurge/internal/errors"
)

// DefaultMaxTableBytes caps the rule table buffer.
// At 176 bytes per rule this is roughly 95k rules.
const DefaultMaxTableBytes = 16 << 20

// Allocator hands out rule table buffers.
type Allocator interface {
	// Grow returns a zeroed buffer of exactly size bytes. On success old is
	// released; on failure old is left with the caller. Contents are not
	// carried over.
	Grow(old []byte, size int) ([]byte, error)

	// Release returns a buffer obtained from Grow.
	Release(buf []byte)
}

// AllocatorStats tracks buffer traffic.
type AllocatorStats struct {
	Allocations    uint64 `json:"allocations"`
	Releases       uint64 `json:"releases"`
	BytesAllocated uint64 `json:"bytes_allocated"`
	BytesReleased  uint64 `json:"bytes_released"`
}

// Outstanding returns the number of buffers handed out and not yet released.
func (s AllocatorStats) Outstanding() int64 {
	return int64(s.Allocations) - int64(s.Releases)
}

// BufferAllocator is an Allocator with a byte ceiling.
type BufferAllocator struct {
	limit int
	stats AllocatorStats
}

// NewBufferAllocator creates an allocator refusing buffers above limit bytes.
// A limit of zero or less disables the ceiling.
func NewBufferAllocator(limit int) *BufferAllocator {
	return &BufferAllocator{limit: limit}
}

// Grow implements Allocator.
func (a *BufferAllocator) Grow(old []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Errorf(errors.KindInternal, "invalid buffer size %d", size)
	}
	if a.limit > 0 && size > a.limit {
		err := errors.Errorf(errors.KindOutOfMemory, "buffer of %d bytes exceeds the %d byte limit", size, a.limit)
		err = errors.Attr(err, "requested", size)
		return nil, errors.Attr(err, "limit", a.limit)
	}

	if old != nil {
		a.Release(old)
	}

	a.stats.Allocations++
	a.stats.BytesAllocated += uint64(size)
	return make([]byte, size), nil
}

// Release implements Allocator.
func (a *BufferAllocator) Release(buf []byte) {
	a.stats.Releases++
	a.stats.BytesReleased += uint64(len(buf))
}

// Stats returns a snapshot of the allocator's counters.
func (a *BufferAllocator) Stats() AllocatorStats {
	return a.stats
}
