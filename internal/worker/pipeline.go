// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package worker

import (
	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/l2l3"
	"github.com/natgw/natgw/internal/rules"
)

var _ rules.Context = (*Worker)(nil)

// Run is the pipeline of spec.md §4.H: each iteration first adopts any
// configuration the reload coordinator has published, then reads a
// burst from every port, dispatches each packet through the L2/L3
// handler and rule tree, and flushes every port's TX batch. It returns
// when stop is closed.
func (w *Worker) Run(stop <-chan struct{}) {
	w.active = w.current.Load()
	w.active.MarkUsed()

	for {
		select {
		case <-stop:
			return
		default:
		}

		w.adoptPendingConfig()

		for i, port := range w.Ports {
			n := port.RxBurst(w.rxBurst[i])
			for _, buf := range w.rxBurst[i][:n] {
				buf.RxPort = i
				w.dispatch(buf)
			}
		}

		for _, port := range w.Ports {
			notSent := port.Flush()
			if notSent > 0 {
				w.stats.DropTXNotSent.Add(uint64(notSent))
			}
		}
	}
}

// dispatch parses one received frame and runs it through the L2/L3
// handler and rule tree, per spec.md §4.F-H. A Continue verdict means
// the rule tree (or the L2/L3 handler itself) never reached a terminal
// action, which spec.md §4.F treats as an implicit drop — dispatch
// releases the buffer in that case, since l2l3.Handle only releases on
// a Terminal verdict.
func (w *Worker) dispatch(buf *iopkt.Buffer) {
	frame, err := header.ParseFrame(buf.Bytes())
	if err != nil {
		w.Release(buf)
		return
	}

	pkt := &rules.Packet{Buf: buf, Frame: frame, RxPort: buf.RxPort}
	verdict := l2l3.Handle(pkt, w, w.active, w.active.Rules)
	if verdict == rules.Continue {
		w.Release(buf)
	}
}

// adoptPendingConfig swaps in a reload coordinator's published
// configuration, if any, at the top of an iteration (spec.md §4.H step
// 1 / §4.J step 2a-2b): the new Config is marked used immediately so the
// coordinator can reclaim the old one, and w.current is updated so
// CurrentConfig/Reload observers see the swap.
func (w *Worker) adoptPendingConfig() {
	next := w.next.Load()
	if next == nil || next == w.active {
		return
	}
	w.next.Store(nil)
	w.active = next
	w.active.MarkUsed()
	w.current.Store(next)
}
