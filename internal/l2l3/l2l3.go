// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package l2l3 implements the Ethernet demux and the ARP/IPv4 handlers of
// spec.md §4.G: the layer between the port's burst RX and the rule-tree
// executor. Everything here runs on the hot path — no allocation, no
// logging, one pass over the frame's already-parsed header view.
package l2l3

import (
	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/rules"
)

// Bindings answers whether an IPv4 address is one of the device's own
// addresses on a given (port, vlan) — spec.md §4.G's "configured on the
// receiving port and on the packet's VLAN" test, backed by the current
// configuration's PortConfig list.
type Bindings interface {
	HasAddress(port int, vlan uint16, ip uint32) bool
}

// Handle demuxes one received packet per spec.md §4.G and, for anything
// not answered directly (ARP reply / ICMP echo reply for our own
// address), hands it to the rule tree. A Terminal result has already
// been fully resolved (enqueued or released) by Handle. A Continue
// result means the rule tree ran out without reaching a terminal
// action — the caller must release pkt.Buf itself, per spec.md §4.F's
// "empty rule tree is an implicit drop".
func Handle(pkt *rules.Packet, ctx rules.Context, bindings Bindings, tree *rules.Node) rules.Verdict {
	switch pkt.Frame.EtherType() {
	case header.EtherTypeIPv4:
		return handleIPv4(pkt, ctx, bindings, tree)
	case header.EtherTypeARP:
		return handleARP(pkt, ctx, bindings)
	default:
		ctx.Stats().DropUnhandledEthertype.Add(1)
		ctx.Release(pkt.Buf)
		return rules.Terminal
	}
}

func handleARP(pkt *rules.Packet, ctx rules.Context, bindings Bindings) rules.Verdict {
	arp := pkt.Frame.ARP()
	if arp.Opcode() != header.ARPOpRequest {
		ctx.Release(pkt.Buf)
		return rules.Terminal
	}

	vlan := pkt.Frame.VLANID()
	if !bindings.HasAddress(pkt.RxPort, vlan, arp.TargetIP()) {
		ctx.Release(pkt.Buf)
		return rules.Terminal
	}

	mac := ctx.PortMAC(pkt.RxPort)
	eth := pkt.Frame.Ethernet()
	eth.SwapSrcDst()
	eth.SetSrc(mac)
	arp.ToReply(mac)

	ctx.Enqueue(pkt.RxPort, pkt.Buf)
	return rules.Terminal
}

func handleIPv4(pkt *rules.Packet, ctx rules.Context, bindings Bindings, tree *rules.Node) rules.Verdict {
	applyUntagFix(pkt)

	ip := pkt.Frame.IPv4()
	if ip.TTL() <= 1 {
		ctx.Release(pkt.Buf)
		return rules.Terminal
	}
	ip.SetTTL(ip.TTL() - 1)

	if pkt.Frame.L4Proto() == header.ProtoICMP && pkt.Frame.HasL4() {
		vlan := pkt.Frame.VLANID()
		if bindings.HasAddress(pkt.RxPort, vlan, ip.DstAddr()) {
			return handleICMPForUs(pkt, ctx)
		}
	}

	return rules.Execute(tree, pkt, ctx)
}

// applyUntagFix zeroes trailing garbage some switches leave behind after
// stripping a VLAN tag, per spec.md §4.G step 1 (the "Nexus 9000 untag
// fix"): anything past the IPv4 header's declared total length is
// padding, not payload, and must not reach the checksum or the rule tree
// with non-zero garbage in it.
func applyUntagFix(pkt *rules.Packet) {
	ip := pkt.Frame.IPv4()
	declared := pkt.Frame.OuterEthernetLen() + int(ip.TotalLen())
	actual := pkt.Buf.Len()
	if actual > declared {
		clear(pkt.Buf.Bytes()[declared:actual])
	}
}

// handleICMPForUs answers an echo request addressed to one of our own
// IPs; any other ICMP type addressed to us is dropped without a reply
// and counted in drop_unknown_icmp (spec.md §4.G step 4).
func handleICMPForUs(pkt *rules.Packet, ctx rules.Context) rules.Verdict {
	icmp := pkt.Frame.ICMP()
	if icmp.Type() != header.ICMPEchoRequest {
		ctx.Stats().DropUnknownICMP.Add(1)
		ctx.Release(pkt.Buf)
		return rules.Terminal
	}

	eth := pkt.Frame.Ethernet()
	eth.SwapSrcDst()

	ip := pkt.Frame.IPv4()
	src, dst := ip.SrcAddr(), ip.DstAddr()
	ip.SetSrcAddr(dst)
	ip.SetDstAddr(src)

	icmp.SetType(header.ICMPEchoReply)
	// Swapping src/dst changed neither the ICMP header's length nor any
	// field but type, but type isn't amenable to the incremental-update
	// helpers (those operate on address/port-sized fields); recompute.
	icmpBytes := pkt.Buf.Bytes()[pkt.Frame.L4Offset():]
	icmp.SetChecksum(header.ChecksumFromScratch(icmpBytes, 2))

	pkt.Buf.Offload |= iopkt.OffloadIPv4Checksum
	ctx.Enqueue(pkt.RxPort, pkt.Buf)
	return rules.Terminal
}
