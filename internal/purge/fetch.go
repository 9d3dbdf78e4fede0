// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package purge

import (
	"grimm.is/denypurge/internal/errors"
	"grimm.is/denypurge/internal/ipfw"
	"grimm.is/denypurge/internal/kernel"
	"grimm.is/denypurge/internal/logging"
	"grimm.is/denypurge/internal/metrics"
)

// Fetcher reads the complete rule table from the kernel.
type Fetcher struct {
	layout  ipfw.Layout
	alloc   Allocator
	metrics *metrics.Registry
	logger  *logging.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts Options) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		layout:  opts.Layout,
		alloc:   opts.Allocator,
		metrics: opts.Metrics,
		logger:  opts.Logger.WithComponent("fetch"),
	}
}

// nextCapacity always leaves room for at least one more record.
func nextCapacity(capacity, recordSize int) int {
	return 2*capacity + 1 + recordSize
}

// FetchRules returns the kernel's rule table. The caller owns the table and
// must Release it.
//
// getsockopt overwrites the length argument with the bytes copied, so a
// response that fills the buffer may be truncated. Only a response shorter
// than the buffer proves the whole table arrived.
func (f *Fetcher) FetchRules(k kernel.Kernel) (*ipfw.Table, error) {
	var buf []byte
	capacity, used := 0, 0

	for attempt := 1; used == capacity; attempt++ {
		capacity = nextCapacity(capacity, f.layout.Size)

		grown, err := f.alloc.Grow(buf, capacity)
		if err != nil {
			if buf != nil {
				f.alloc.Release(buf)
			}
			err = errors.Wrapf(err, errors.KindOutOfMemory, "failed to grow rule buffer to %d bytes", capacity)
			return nil, errors.Attr(err, "attempt", attempt)
		}
		buf = grown

		ipfw.StampVersion(buf, f.layout)
		f.metrics.FetchAttempt()

		used, err = k.GetRules(buf)
		if err != nil {
			f.alloc.Release(buf)
			err = errors.Wrap(err, errors.KindKernelQuery, "IP_FW_GET failed")
			err = errors.Attr(err, "capacity", capacity)
			return nil, errors.Attr(err, "attempt", attempt)
		}
		if used < 0 || used > capacity {
			f.alloc.Release(buf)
			err = errors.Errorf(errors.KindKernelQuery, "IP_FW_GET returned %d bytes for a %d byte buffer", used, capacity)
			return nil, errors.Attr(err, "attempt", attempt)
		}

		f.logger.Debug("queried rule table", "attempt", attempt, "offered", capacity, "used", used)
	}

	tbl, err := ipfw.NewTable(buf, used, f.layout, f.alloc.Release)
	if err != nil {
		f.alloc.Release(buf)
		return nil, errors.Wrap(err, errors.KindKernelQuery, "IP_FW_GET returned a malformed table")
	}

	f.metrics.TableFetched(used)
	f.logger.Debug("fetched rule table", "rules", tbl.Len(), "bytes", used)
	return tbl, nil
}
