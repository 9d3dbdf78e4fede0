// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipfw

import "fmt"

// Table is a rule table snapshot backed by a buffer the kernel filled.
//
// The buffer is usually larger than the data: only the first Used bytes were
// written, and only records before the sentinel are rules. Release returns
// the buffer to its owner; a Table must not be used afterwards.
type Table struct {
	buf     []byte
	used    int
	count   int
	layout  Layout
	release func([]byte)
}

// NewTable wraps buf, of which the kernel reported used bytes. release is
// called with buf by the first call to Release and may be nil.
//
// It fails when used exceeds the buffer or when no sentinel record is found
// within the used bytes.
func NewTable(buf []byte, used int, layout Layout, release func([]byte)) (*Table, error) {
	if used < 0 || used > len(buf) {
		return nil, fmt.Errorf("kernel reported %d bytes for a %d byte buffer", used, len(buf))
	}

	count := -1
	for off := 0; off+layout.Size <= used; off += layout.Size {
		rec := Record{raw: buf[off : off+layout.Size], layout: layout}
		if rec.IsSentinel() {
			count = off / layout.Size
			break
		}
	}
	if count < 0 {
		return nil, fmt.Errorf("no end-of-table rule %d in %d bytes", SentinelRuleNumber, used)
	}

	return &Table{
		buf:     buf,
		used:    used,
		count:   count,
		layout:  layout,
		release: release,
	}, nil
}

// Len returns the number of rules before the sentinel.
func (t *Table) Len() int {
	return t.count
}

// Used returns the number of bytes the kernel wrote.
func (t *Table) Used() int {
	return t.used
}

// Capacity returns the size of the backing buffer.
func (t *Table) Capacity() int {
	return len(t.buf)
}

// At returns the i-th rule. i must be in [0, Len()).
func (t *Table) At(i int) Record {
	if i < 0 || i >= t.count {
		panic(fmt.Sprintf("ipfw: rule index %d out of range [0,%d)", i, t.count))
	}
	off := i * t.layout.Size
	return Record{raw: t.buf[off : off+t.layout.Size], layout: t.layout}
}

// Records returns every rule before the sentinel, in kernel order.
func (t *Table) Records() []Record {
	out := make([]Record, t.count)
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// Release hands the buffer back. Only the first call has any effect.
func (t *Table) Release() {
	if t.buf == nil {
		return
	}
	buf := t.buf
	t.buf = nil
	t.count = 0
	if t.release != nil {
		t.release(buf)
	}
}
