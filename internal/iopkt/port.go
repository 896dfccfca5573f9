// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package iopkt

import (
	"fmt"
	"net"
	"time"

	"github.com/mdlayher/packet"
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

// Port is one physical port's RX/TX queue pair: a raw AF_PACKET socket
// bound to one interface, a private buffer pool, and a TX batching
// buffer. Every NIC queue is exclusively owned by the worker that holds
// its Port — no Port is ever shared between workers (spec.md §5).
type Port struct {
	Name string
	conn *packet.Conn
	pool *Pool

	txBatch []*Buffer
	txCap   int
	notSent int // not-sent count from implicit flushes, reported by the next Flush
}

// etherTypeFilter is a classic BPF program accepting only ARP, IPv4 and
// 802.1Q-tagged frames (whatever their inner EtherType), attached to the
// raw socket so the kernel drops everything
// else before it reaches userspace. Component G still performs the
// authoritative ethertype demux and still counts
// drop_unhandled_ethertype for anything that slips past a permissive
// driver; this filter is a throughput optimization, not a semantic
// substitute (see SPEC_FULL.md §4.A).
func etherTypeFilter() []bpf.Instruction {
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: 12, Size: 2}, // EtherType offset in an untagged frame
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(0x0800), SkipFalse: 1},
		bpf.RetConstant{Val: 0xffff},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(0x0806), SkipFalse: 1},
		bpf.RetConstant{Val: 0xffff},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(0x8100), SkipFalse: 1}, // VLAN-tagged
		bpf.RetConstant{Val: 0xffff},
		bpf.RetConstant{Val: 0},
	}
}

// OpenPort binds a raw socket to the named interface, primes a buffer
// pool of poolSize buffers, and sizes the TX batch to txBatch packets
// (spec.md §3 Worker, default B=32).
func OpenPort(ifaceName string, poolSize, txBatch int) (*Port, error) {
	ifi, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("iopkt: lookup interface %q: %w", ifaceName, err)
	}

	raw, err := bpf.Assemble(etherTypeFilter())
	if err != nil {
		return nil, fmt.Errorf("iopkt: assemble BPF filter: %w", err)
	}

	conn, err := packet.Listen(ifi, packet.Raw, int(htons(unix.ETH_P_ALL)), &packet.Config{
		Filter: raw,
	})
	if err != nil {
		return nil, fmt.Errorf("iopkt: listen on %q: %w", ifaceName, err)
	}

	return &Port{
		Name:    ifaceName,
		conn:    conn,
		pool:    NewPool(poolSize),
		txBatch: make([]*Buffer, 0, txBatch),
		txCap:   txBatch,
	}, nil
}

func htons(v uint16) uint16 { return v<<8 | v>>8 }

// Close releases the underlying socket.
func (p *Port) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// RxBurst reads up to len(dst) packets without blocking for long: each
// read uses a short deadline so an idle port never stalls the worker
// loop waiting on one port while others have traffic (spec.md §4.H
// "busy-poll", adapted to a blocking syscall-backed socket rather than a
// true PMD ring).
func (p *Port) RxBurst(dst []*Buffer) int {
	n := 0
	_ = p.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	for n < len(dst) {
		buf := p.pool.Get()
		if buf == nil {
			break // pool exhausted; backpressure, not an error
		}
		read, _, err := p.conn.ReadFrom(buf.data[:])
		if err != nil {
			p.pool.Put(buf)
			break
		}
		buf.SetLength(read)
		buf.RxPort = 0 // set by the caller, which knows the port index
		dst[n] = buf
		n++
	}
	return n
}

// Enqueue adds buf to this port's TX batch, flushing first if full. The
// buffer's ownership transfers to the batch; the caller must not touch
// buf again.
func (p *Port) Enqueue(buf *Buffer) {
	if len(p.txBatch) >= p.txCap {
		p.notSent = p.Flush()
	}
	p.txBatch = append(p.txBatch, buf)
}

// Flush transmits every batched packet, releasing accepted ones to the
// NIC (freed once the kernel has copied/queued them) and explicitly
// freeing any the NIC did not accept, per spec.md §4.H step 3. It
// returns the count of packets the caller should add to
// drop_tx_notsent, including any left unsent by Enqueue's implicit
// flushes since the previous call.
func (p *Port) Flush() int {
	notSent := p.notSent
	p.notSent = 0
	for _, buf := range p.txBatch {
		_, err := p.conn.WriteTo(buf.Bytes(), &packet.Addr{HardwareAddr: net.HardwareAddr(nil)})
		if err != nil {
			notSent++
		}
		p.pool.Put(buf)
	}
	p.txBatch = p.txBatch[:0]
	return notSent
}

// Pool exposes the port's buffer pool so a worker can return RX buffers
// it chose not to forward.
func (p *Port) Pool() *Pool { return p.pool }
