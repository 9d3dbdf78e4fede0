// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "denypurge"

// Registry holds the metrics for one purge run.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	FetchAttempts  prometheus.Counter
	TableBytes     prometheus.Gauge
	RulesScanned   prometheus.Counter
	RulesDeleted   prometheus.Counter
	DeleteFailures prometheus.Counter
	LastRunSuccess prometheus.Gauge
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		FetchAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "IP_FW_GET calls issued while sizing the rule table buffer",
		}),
		TableBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_bytes",
			Help:      "Bytes of rule table returned by the last successful IP_FW_GET",
		}),
		RulesScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_scanned_total",
			Help:      "Rules inspected before the end-of-table rule",
		}),
		RulesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_deleted_total",
			Help:      "Deny rules removed with IP_FW_DEL",
		}),
		DeleteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delete_failures_total",
			Help:      "IP_FW_DEL calls rejected by the kernel",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed without error, 0 otherwise",
		}),
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// FetchAttempt records one IP_FW_GET call.
func (r *Registry) FetchAttempt() {
	if r == nil {
		return
	}
	r.FetchAttempts.Inc()
}

// TableFetched records the size of a complete table.
func (r *Registry) TableFetched(bytes int) {
	if r == nil {
		return
	}
	r.TableBytes.Set(float64(bytes))
}

// RuleScanned records one rule inspected by the purger.
func (r *Registry) RuleScanned() {
	if r == nil {
		return
	}
	r.RulesScanned.Inc()
}

// RuleDeleted records one successful deletion.
func (r *Registry) RuleDeleted() {
	if r == nil {
		return
	}
	r.RulesDeleted.Inc()
}

// DeleteFailed records one rejected deletion.
func (r *Registry) DeleteFailed() {
	if r == nil {
		return
	}
	r.DeleteFailures.Inc()
}

// RunFinished records the outcome of the run.
func (r *Registry) RunFinished(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.LastRunSuccess.Set(0)
		return
	}
	r.LastRunSuccess.Set(1)
}

// WriteTextfile writes every metric to path in the text exposition format,
// for node_exporter's textfile collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
