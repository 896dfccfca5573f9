// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package offload wires an optional in-kernel TC fast path alongside
// internal/iopkt's userspace poll-mode RX/TX path: SyncFlow pushes a
// flow's NAT translation into a BPF map so the kernel forwards that
// flow's packets on a TC hook without ever crossing into this process.
// A flow not present in the map falls through to the normal AF_PACKET
// path (component A). Nothing in the poll-mode path calls SyncFlow, so
// the map holds only the flows a caller of SyncFlow installs.
//
// This does not replace component A's poll-mode RX/TX — the retrieved
// stack has no pure-Go DPDK-style PMD binding, so all RX/TX still goes
// through mdlayher/packet raw sockets. What cilium/ebpf buys here is a
// fast path for established flows, not a replacement transport.
package offload

import (
	"fmt"
	"net"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"

	"github.com/natgw/natgw/internal/logging"
)

// FlowKey mirrors the BPF program's map key layout: a 5-tuple with
// explicit trailing padding so the Go and C struct layouts agree.
type FlowKey struct {
	SrcAddr uint32
	DstAddr uint32
	SrcPort uint16
	DstPort uint16
	Proto   uint8
	_       [3]byte
}

// FlowState is the map value: the translated 5-tuple the kernel program
// should rewrite to, mirroring rules.ActionNATRewrite's address
// substitution without running any rule-tree logic in-kernel.
type FlowState struct {
	NewSrcAddr uint32
	NewDstAddr uint32
	NewSrcPort uint16
	NewDstPort uint16
	_          [4]byte
}

// Stats mirrors the teacher's TCStats shape: counters the TC program
// maintains itself, read back from tc_stats_map.
type Stats struct {
	PacketsFastPath uint64
	PacketsSlowPath uint64
	PacketsDropped  uint64
	BytesProcessed  uint64
}

// TCOffload manages a loaded TC fast-path program and its attachment
// points. The zero value is not usable; build one with Load.
type TCOffload struct {
	collection *ebpf.Collection
	links      []link.Link
	log        *logging.Logger
}

// Load reads a pre-compiled TC object file from objPath and loads its
// maps and programs, disabling pinning (this process owns the
// collection's lifetime; it is not shared across daemon restarts).
func Load(objPath string, log *logging.Logger) (*TCOffload, error) {
	spec, err := ebpf.LoadCollectionSpec(objPath)
	if err != nil {
		return nil, fmt.Errorf("load TC offload spec from %s: %w", objPath, err)
	}
	for _, m := range spec.Maps {
		m.Pinning = ebpf.PinNone
	}

	collection, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("load TC offload collection: %w", err)
	}

	return &TCOffload{collection: collection, log: log}, nil
}

// Attach hooks the ingress and egress fast-path programs onto ifaceName
// via the TCX attach point.
func (o *TCOffload) Attach(ifaceName string) error {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return fmt.Errorf("find interface %s: %w", ifaceName, err)
	}

	ingress := o.collection.Programs["tc_fast_path"]
	if ingress == nil {
		return fmt.Errorf("tc_fast_path program not found in collection")
	}
	ingressLink, err := link.AttachTCX(link.TCXOptions{
		Program:   ingress,
		Interface: iface.Index,
		Attach:    ebpf.AttachTCXIngress,
	})
	if err != nil {
		return fmt.Errorf("attach ingress TC program to %s: %w", ifaceName, err)
	}
	o.links = append(o.links, ingressLink)

	egress := o.collection.Programs["tc_egress_fast_path"]
	if egress == nil {
		return fmt.Errorf("tc_egress_fast_path program not found in collection")
	}
	egressLink, err := link.AttachTCX(link.TCXOptions{
		Program:   egress,
		Interface: iface.Index,
		Attach:    ebpf.AttachTCXEgress,
	})
	if err != nil {
		ingressLink.Close()
		o.links = o.links[:len(o.links)-1]
		return fmt.Errorf("attach egress TC program to %s: %w", ifaceName, err)
	}
	o.links = append(o.links, egressLink)

	if o.log != nil {
		o.log.Info("attached TC fast-path program", "interface", ifaceName)
	}
	return nil
}

// SyncFlow installs or refreshes the kernel's fast-path translation for
// a flow. The worker pipeline and the rule actions do not call it.
func (o *TCOffload) SyncFlow(key FlowKey, state FlowState) error {
	m := o.flowMap()
	if m == nil {
		return fmt.Errorf("flow_map not available")
	}
	return m.Update(&key, &state, ebpf.UpdateAny)
}

// DeleteFlow removes a flow's fast-path entry, e.g. on TCP FIN/RST or
// NAT table eviction, so the kernel stops short-circuiting it.
func (o *TCOffload) DeleteFlow(key FlowKey) error {
	m := o.flowMap()
	if m == nil {
		return fmt.Errorf("flow_map not available")
	}
	return m.Delete(&key)
}

// Stats reads the program's own packet/byte counters.
func (o *TCOffload) Stats() Stats {
	m := o.collection.Maps["tc_stats_map"]
	if m == nil {
		return Stats{}
	}
	var key uint32
	var s Stats
	_ = m.Lookup(&key, &s)
	return s
}

func (o *TCOffload) flowMap() *ebpf.Map {
	return o.collection.Maps["flow_map"]
}

// Close detaches every attached link and releases the loaded collection.
func (o *TCOffload) Close() error {
	var lastErr error
	for _, l := range o.links {
		if err := l.Close(); err != nil {
			lastErr = err
		}
	}
	o.links = nil
	o.collection.Close()
	return lastErr
}
