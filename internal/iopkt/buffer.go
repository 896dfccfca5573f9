// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package iopkt is the packet buffer & queue abstraction of spec.md
// §3/§4.A: burst RX/TX, per-port TX batching, and the offload flags the
// NAT rewrite path sets instead of recomputing checksums or inserting
// VLAN tags itself. The real NIC driver and memory pool are out of
// spec's scope; this package's Port is backed by a raw AF_PACKET socket
// per github.com/mdlayher/packet, the closest pure-Go analogue to a
// kernel-bypass PMD queue available to this codebase.
package iopkt

// Offload flags, set by action_nat_rewrite/action_out and consumed by
// the port's TX path instead of being computed on every field rewrite.
type OffloadFlags uint8

const (
	OffloadIPv4Checksum OffloadFlags = 1 << iota
	OffloadTCPChecksum
	OffloadUDPChecksum
	OffloadVLANInsert
)

// DefaultMTU is the standard Ethernet MTU. The buffer pool does not use
// it: every Buffer holds MaxFrameLen bytes.
const DefaultMTU = 1500

// MaxFrameLen is the largest frame this pool ever allocates: a jumbo MTU
// plus Ethernet header and one VLAN tag (14+4 bytes); no FCS room.
const MaxFrameLen = 9216 + 18

// Buffer is one packet buffer, owned by the I/O layer and borrowed by
// the pipeline for exactly one iteration (spec.md §3). A Buffer either
// moves into a TX batch (ownership transfers to the NIC on accept) or is
// released back to its pool on any exit path, including error paths
// inside action_nat_rewrite.
type Buffer struct {
	data    [MaxFrameLen]byte
	length  int
	pool    *Pool
	poolIdx int

	Offload OffloadFlags
	VLANTCI uint16

	// RxPort is the index of the port this buffer was received on; set
	// by the caller of RxBurst and read by the dispatch/handler stage.
	RxPort int
}

// Bytes returns the buffer's valid frame, data[:length].
func (b *Buffer) Bytes() []byte { return b.data[:b.length] }

// SetLength truncates or (within capacity) extends the valid frame.
func (b *Buffer) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxFrameLen {
		n = MaxFrameLen
	}
	b.length = n
}

// Len returns the current valid frame length.
func (b *Buffer) Len() int { return b.length }

// reset clears per-iteration state before a buffer is reused from the
// pool, without touching the backing array (RxBurst overwrites it).
func (b *Buffer) reset() {
	b.length = 0
	b.Offload = 0
	b.VLANTCI = 0
	b.RxPort = 0
}

// Pool is a fixed-size, per-worker, per-port free list of Buffers.
// Allocation happens once at setup (and again at reload, for a changed
// port count) and never on the data path: Get/Put never allocate once
// primed.
type Pool struct {
	free []*Buffer
}

// NewPool preallocates n buffers.
func NewPool(n int) *Pool {
	p := &Pool{free: make([]*Buffer, 0, n)}
	for i := 0; i < n; i++ {
		buf := &Buffer{pool: p}
		p.free = append(p.free, buf)
	}
	return p
}

// Get removes a buffer from the free list, or returns nil if the pool is
// exhausted (the caller must treat that as backpressure, never as an
// allocation opportunity on the data path).
func (p *Pool) Get() *Buffer {
	n := len(p.free)
	if n == 0 {
		return nil
	}
	buf := p.free[n-1]
	p.free = p.free[:n-1]
	buf.reset()
	return buf
}

// Put returns a buffer to its pool's free list.
func (p *Pool) Put(buf *Buffer) {
	if buf == nil || buf.pool == nil {
		return
	}
	buf.pool.free = append(buf.pool.free, buf)
}

// Release returns buf to its owning pool. Safe to call on a nil Buffer.
func Release(buf *Buffer) {
	if buf == nil {
		return
	}
	Put(buf)
}

// Put is the package-level form of Pool.Put, for callers that only hold
// a *Buffer (which remembers its own pool).
func Put(buf *Buffer) {
	if buf == nil || buf.pool == nil {
		return
	}
	buf.pool.Put(buf)
}
