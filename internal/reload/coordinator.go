// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package reload implements spec.md §4.J's reload protocol: build a new
// Config off the hot path, publish it to every worker in a fixed order,
// and reclaim the previous Config only once every worker has actually
// switched to it.
package reload

import (
	"time"

	"github.com/natgw/natgw/internal/config"
	"github.com/natgw/natgw/internal/logging"
)

// Target is the minimal view a Coordinator needs of a running worker —
// kept narrow (mirroring internal/rules.Context's own narrowness) so
// this package never imports worker; worker satisfies Target and
// imports this package, not the other way around.
type Target interface {
	CurrentConfig() *config.Config
	Reload(cfg *config.Config)
}

// Coordinator drives a reload across every worker in the daemon, per
// spec.md §4.J: it owns no per-packet state and runs entirely off the
// hot path, invoked from the admin `reload` command handler.
type Coordinator struct {
	targets []Target
	log     *logging.Logger

	// PollInterval is how often the coordinator checks a worker's
	// Used() flag while waiting for it to adopt a published config.
	PollInterval time.Duration
}

// New builds a Coordinator over the given workers.
func New(targets []Target, log *logging.Logger) *Coordinator {
	return &Coordinator{targets: targets, log: log, PollInterval: 50 * time.Microsecond}
}

// Report is what the admin `reload` command hands back to the caller:
// the new configuration's id, its NAT pair count, and a unified diff
// against whichever configuration each worker was previously running.
type Report struct {
	NewConfigID string
	NATPairs    int
	Diffs       []WorkerDiff
}

// WorkerDiff is the diff published to one worker.
type WorkerDiff struct {
	WorkerID int
	Diff     string
}

// Apply publishes cfg to every target, in order, spin-waiting on each
// one's Used() flag before moving to the next (spec.md §4.J steps
// 2a-2c): a worker mid-burst finishes that burst before MarkUsed runs at
// the top of its next iteration, so Apply blocks for at most one
// iteration per worker, not one per packet.
func (c *Coordinator) Apply(cfg *config.Config) Report {
	report := Report{NewConfigID: cfg.ID.String()}
	if cfg.NAT != nil {
		report.NATPairs = cfg.NAT.Pairs()
	}

	for i, t := range c.targets {
		old := t.CurrentConfig()

		// Each worker gets its own clone so its used flag can never be
		// pre-satisfied by another worker adopting the same generation.
		mine := cfg.Clone()
		t.Reload(mine)
		c.waitUsed(mine)

		diff := ""
		if old != nil {
			diff = Diff(old, mine)
		}
		report.Diffs = append(report.Diffs, WorkerDiff{WorkerID: i, Diff: diff})

		if c.log != nil {
			c.log.Info("worker adopted configuration", "worker", i, "config_id", cfg.ID.String())
		}
	}
	return report
}

// waitUsed spin-waits on cfg.Used(), sleeping PollInterval between
// checks rather than busy-spinning: this runs on the admin goroutine,
// not a pinned worker, so yielding the CPU between polls is free.
func (c *Coordinator) waitUsed(cfg *config.Config) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = 50 * time.Microsecond
	}
	for !cfg.Used() {
		time.Sleep(interval)
	}
}
