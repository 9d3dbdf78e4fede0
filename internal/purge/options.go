// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package purge

import (
	"grimm.is/denypurge/internal/ipfw"
	"grimm.is/denypurge/internal/logging"
	"grimm.is/denypurge/internal/metrics"
)

// Options configures a Fetcher or Purger. Zero values select defaults.
type Options struct {
	// Layout is the rule record layout; defaults to ipfw.DefaultLayout.
	Layout ipfw.Layout

	// Allocator supplies table buffers; defaults to a BufferAllocator
	// capped at DefaultMaxTableBytes.
	Allocator Allocator

	// Metrics may be nil.
	Metrics *metrics.Registry

	// Logger defaults to the package default logger.
	Logger *logging.Logger

	// DryRun reports deny rules without deleting them.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.Layout.Size == 0 {
		o.Layout = ipfw.DefaultLayout
	}
	if o.Allocator == nil {
		o.Allocator = NewBufferAllocator(DefaultMaxTableBytes)
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	return o
}
