// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package purge

import (
	"fmt"

	"grimm.is/denypurge/internal/errors"
	"grimm.is/denypurge/internal/kernel"
	"grimm.is/denypurge/internal/logging"
	"grimm.is/denypurge/internal/metrics"
)

// Purger deletes every deny rule from the kernel's rule table.
type Purger struct {
	fetcher *Fetcher
	metrics *metrics.Registry
	logger  *logging.Logger
	dryRun  bool
	state   State
}

// NewPurger creates a Purger.
func NewPurger(opts Options) *Purger {
	opts = opts.withDefaults()
	return &Purger{
		fetcher: NewFetcher(opts),
		metrics: opts.Metrics,
		logger:  opts.Logger.WithComponent("purge"),
		dryRun:  opts.DryRun,
		state:   StateIdle,
	}
}

// State returns the state reached by the last call to PurgeDenyRules.
func (p *Purger) State() State {
	return p.state
}

// PurgeDenyRules deletes every deny rule and returns how many were deleted.
// In dry-run mode it returns how many would have been deleted.
//
// A failed deletion stops the walk. Rules deleted before it stay deleted and
// the count is not returned; the error carries the failing rule number in
// its "rule" attribute.
func (p *Purger) PurgeDenyRules(k kernel.Kernel) (int, error) {
	p.state = StateFetching
	tbl, err := p.fetcher.FetchRules(k)
	if err != nil {
		p.state = StateFailed
		return 0, errors.Wrap(err, errors.KindFetch, "failed to fetch rules")
	}
	defer tbl.Release()

	p.state = StateIterating
	deleted := 0
	for i := 0; i < tbl.Len(); i++ {
		rec := tbl.At(i)
		p.metrics.RuleScanned()

		if !rec.IsDeny() {
			continue
		}

		if p.dryRun {
			p.logger.Info("would delete rule", "rule", rec.Number())
			deleted++
			continue
		}

		p.state = StateDeleting
		if err := k.DeleteRule(rec.Bytes()); err != nil {
			p.state = StateFailed
			p.metrics.DeleteFailed()
			err = errors.Wrapf(err, errors.KindDelete, "Failed to delete rule %d", rec.Number())
			return 0, errors.Attr(err, "rule", rec.Number())
		}
		deleted++
		p.metrics.RuleDeleted()
		p.logger.Audit("delete", fmt.Sprintf("ipfw:%d", rec.Number()), map[string]any{
			"command": rec.Command().String(),
			"flags":   fmt.Sprintf("%#x", rec.Flags()),
		})
		p.state = StateIterating
	}

	p.state = StateDone
	p.logger.Debug("purge complete", "scanned", tbl.Len(), "deleted", deleted, "dry_run", p.dryRun)
	return deleted, nil
}
