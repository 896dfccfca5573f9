// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package worker implements spec.md §4.H's per-core pipeline: one
// goroutine, pinned to one CPU, owning private RX/TX queues and a
// private stats block, run to completion with no cross-worker state.
// The RX scratch slices are preallocated, but dispatch allocates a
// header.Frame and a rules.Packet for every received frame.
package worker

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/natgw/natgw/internal/config"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/l2l3"
	"github.com/natgw/natgw/internal/logging"
	"github.com/natgw/natgw/internal/nattable"
	"github.com/natgw/natgw/internal/reload"
	"github.com/natgw/natgw/internal/stats"
)

// DefaultBurst is B in spec.md §4.H: packets read per port per iteration.
const DefaultBurst = 32

// Worker is spec.md §3's Worker: id, per-port queues, TX batching, the
// current Configuration pointer, and a stats block. It implements
// rules.Context so the rule tree can call back into it without either
// package importing the other (internal/rules.Context keeps that edge
// narrow).
type Worker struct {
	ID    int
	Ports []*iopkt.Port
	Burst int

	log   *logging.Logger
	stats *stats.Block

	current atomic.Pointer[config.Config] // written by New and by this worker on adoption; read by the reload coordinator
	next    atomic.Pointer[config.Config] // published by the reload coordinator, consumed here

	active *config.Config // read/written only by this worker's own goroutine

	rxBurst [][]*iopkt.Buffer // preallocated per-port RX scratch
}

// New builds a Worker over the given ports with initial configuration
// cfg. burst <= 0 selects DefaultBurst.
func New(id int, ports []*iopkt.Port, cfg *config.Config, log *logging.Logger, burst int) *Worker {
	if burst <= 0 {
		burst = DefaultBurst
	}
	w := &Worker{
		ID:      id,
		Ports:   ports,
		Burst:   burst,
		log:     log,
		stats:   &stats.Block{},
		rxBurst: make([][]*iopkt.Buffer, len(ports)),
	}
	for i := range ports {
		w.rxBurst[i] = make([]*iopkt.Buffer, burst)
	}
	w.current.Store(cfg)
	return w
}

// StatsBlock exposes this worker's counters for aggregation.
func (w *Worker) StatsBlock() *stats.Block { return w.stats }

// Reload publishes cfg as the configuration this worker should adopt at
// the top of its next iteration — spec.md §4.J step 2a. The reload
// coordinator then spin-waits on cfg.Used().
func (w *Worker) Reload(cfg *config.Config) { w.next.Store(cfg) }

// CurrentConfig returns the configuration this worker is presently
// running (safe to call from any goroutine; it is the coordinator's read
// of "w.config" in spec.md §4.J).
func (w *Worker) CurrentConfig() *config.Config { return w.current.Load() }

// --- rules.Context ---

func (w *Worker) NAT() *nattable.Table { return w.active.NAT }
func (w *Worker) Stats() *stats.Block  { return w.stats }

func (w *Worker) PortMAC(port int) net.HardwareAddr { return w.active.PortMAC(port) }

func (w *Worker) Enqueue(port int, buf *iopkt.Buffer) {
	if port < 0 || port >= len(w.Ports) {
		w.stats.DropTXNotSent.Add(1)
		iopkt.Release(buf)
		return
	}
	w.Ports[port].Enqueue(buf)
}

func (w *Worker) Release(buf *iopkt.Buffer) { iopkt.Release(buf) }

func (w *Worker) Logf(format string, args ...any) {
	if w.log == nil {
		return
	}
	w.log.Info(fmt.Sprintf(format, args...))
}

var _ l2l3.Bindings = (*config.Config)(nil)
var _ reload.Target = (*Worker)(nil)
