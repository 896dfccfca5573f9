// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package stats holds the per-worker counter block of spec.md §3/§4.K:
// single-writer (the owning worker), multi-reader (admin handlers,
// periodic output). Each counter is an atomic.Uint64, so a single read
// never tears; reads of different counters are not taken together.
package stats

import "sync/atomic"

// Block is one worker's counters. Each worker allocates its own Block
// rather than sharing one across workers; the struct carries no
// cache-line padding or alignment.
type Block struct {
	DropNoRule            atomic.Uint64
	DropNATCondition      atomic.Uint64
	DropBadL3Checksum     atomic.Uint64
	RxBadL4Checksum       atomic.Uint64
	DropUnknownICMP       atomic.Uint64
	DropUnhandledEthertype atomic.Uint64
	DropTXNotSent         atomic.Uint64
}

// Snapshot is a point-in-time, race-free copy of a Block for rendering
// or serialization (JSON/admin responses).
type Snapshot struct {
	DropNoRule             uint64 `json:"drop_no_rule"`
	DropNATCondition       uint64 `json:"drop_nat_condition"`
	DropBadL3Checksum      uint64 `json:"drop_bad_l3_cksum"`
	RxBadL4Checksum        uint64 `json:"rx_bad_l4_cksum"`
	DropUnknownICMP        uint64 `json:"drop_unknown_icmp"`
	DropUnhandledEthertype uint64 `json:"drop_unhandled_ethertype"`
	DropTXNotSent          uint64 `json:"drop_tx_notsent"`
}

// Read takes a best-effort, non-atomic-as-a-whole snapshot of b. Each
// individual field read is itself atomic; the Snapshot as a whole is not
// a consistent point in time, which is acceptable for counters that only
// ever increase.
func (b *Block) Read() Snapshot {
	return Snapshot{
		DropNoRule:             b.DropNoRule.Load(),
		DropNATCondition:       b.DropNATCondition.Load(),
		DropBadL3Checksum:      b.DropBadL3Checksum.Load(),
		RxBadL4Checksum:        b.RxBadL4Checksum.Load(),
		DropUnknownICMP:        b.DropUnknownICMP.Load(),
		DropUnhandledEthertype: b.DropUnhandledEthertype.Load(),
		DropTXNotSent:          b.DropTXNotSent.Load(),
	}
}

// Add accumulates another snapshot into s, used to aggregate across
// workers for the admin `stats` command.
func (s *Snapshot) Add(o Snapshot) {
	s.DropNoRule += o.DropNoRule
	s.DropNATCondition += o.DropNATCondition
	s.DropBadL3Checksum += o.DropBadL3Checksum
	s.RxBadL4Checksum += o.RxBadL4Checksum
	s.DropUnknownICMP += o.DropUnknownICMP
	s.DropUnhandledEthertype += o.DropUnhandledEthertype
	s.DropTXNotSent += o.DropTXNotSent
}

// Aggregate sums the snapshots of every worker block, for cross-worker
// reporting (best-effort per spec.md §5 — no synchronization is needed
// or taken beyond each field's own atomic read).
func Aggregate(blocks []*Block) Snapshot {
	var total Snapshot
	for _, b := range blocks {
		total.Add(b.Read())
	}
	return total
}
