// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

import (
	"net"

	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
)

// ActionFunc is an action primitive: executes against a packet and
// reports Continue (proceed to the next node) or Terminal (stop
// processing this packet) per spec.md §3 ACTION leaf.
type ActionFunc func(pkt *Packet, ctx Context, param any) Verdict

// Field selects which IPv4 address action_nat_rewrite translates.
type Field int

const (
	FieldSrc Field = iota
	FieldDst
)

// OutTarget is action_out's parameter: the output port, the VLAN to tag
// with (0 = untag), and the next-hop MAC to set as the Ethernet
// destination.
type OutTarget struct {
	Port       int
	VLAN       uint16
	NextHopMAC net.HardwareAddr
}

// ActionDrop is action_drop: unconditionally releases the packet and
// stops rule processing. SPEC_FULL.md §9(b) resolves the source's
// inconsistent counting: drop_nat_condition is incremented on every
// call, not only when the drop is conditional on a NAT miss elsewhere.
func ActionDrop(pkt *Packet, ctx Context, _ any) Verdict {
	ctx.Stats().DropNATCondition.Add(1)
	ctx.Release(pkt.Buf)
	return Terminal
}

// ActionPrint is action_print: logs a one-line summary and never fails
// or alters the packet.
func ActionPrint(pkt *Packet, ctx Context, _ any) Verdict {
	f := pkt.Frame
	if f.IsIPv4() {
		ip := f.IPv4()
		ctx.Logf("port=%d vlan=%d proto=%d src=%s dst=%s ttl=%d len=%d",
			pkt.RxPort, f.VLANID(), ip.Protocol(),
			uint32ToIP(ip.SrcAddr()), uint32ToIP(ip.DstAddr()),
			ip.TTL(), ip.TotalLen())
	} else {
		ctx.Logf("port=%d vlan=%d ethertype=0x%04x", pkt.RxPort, f.VLANID(), f.EtherType())
	}
	return Continue
}

// ActionNATRewrite is action_nat_rewrite(field): looks up the chosen
// address, rewrites it with an incremental checksum update, and fixes
// up the L4 checksum per spec.md §4.D. A lookup miss drops the packet
// and counts drop_no_rule.
func ActionNATRewrite(pkt *Packet, ctx Context, param any) Verdict {
	field := param.(Field)
	f := pkt.Frame
	if !f.IsIPv4() {
		ctx.Release(pkt.Buf)
		return Terminal
	}
	ip := f.IPv4()

	var x uint32
	if field == FieldSrc {
		x = ip.SrcAddr()
	} else {
		x = ip.DstAddr()
	}

	y, ok := ctx.NAT().Lookup(x)
	if !ok {
		ctx.Stats().DropNoRule.Add(1)
		ctx.Release(pkt.Buf)
		return Terminal
	}

	newCksum := header.ChecksumReplace32(ip.Checksum(), x, y)
	if field == FieldSrc {
		ip.SetSrcAddr(y)
	} else {
		ip.SetDstAddr(y)
	}
	ip.SetChecksum(newCksum)

	if !l4Fixup(pkt, field, x, y) {
		ctx.Release(pkt.Buf)
		return Terminal
	}

	ctx.NAT().AddByteCount(x, uint64(f.IPv4().TotalLen()))
	return Continue
}

// l4Fixup applies the by-protocol L4 checksum fixup of spec.md §4.D. It
// returns false if a malformed inner packet was detected and the packet
// must be dropped.
func l4Fixup(pkt *Packet, field Field, oldAddr, newAddr uint32) bool {
	f := pkt.Frame
	if !f.HasL4() {
		return true // no L4 fixup for fragments/unknown protocols
	}
	ip := f.IPv4()
	firstFragment := !ip.IsFragment() || ip.FirstFragment()

	switch f.L4Proto() {
	case header.ProtoTCP:
		tcp := f.TCP()
		if firstFragment {
			tcp.SetChecksum(header.ChecksumReplace32(tcp.Checksum(), oldAddr, newAddr))
		} else {
			tcp.SetChecksum(0)
			pkt.Buf.Offload |= iopkt.OffloadTCPChecksum
		}
	case header.ProtoUDP, header.ProtoUDPLite:
		udp := f.UDP()
		if firstFragment {
			if udp.Checksum() != 0 {
				udp.SetChecksum(header.ChecksumReplace32(udp.Checksum(), oldAddr, newAddr))
			}
		} else {
			udp.SetChecksum(0)
			pkt.Buf.Offload |= iopkt.OffloadUDPChecksum
		}
	case header.ProtoICMP:
		return icmpErrorFixup(pkt, field, oldAddr, newAddr)
	}
	return true
}

// icmpErrorFixup rewrites the inner (embedded, error-originating)
// IPv4 header's address when the outer packet's address is rewritten,
// per spec.md §4.D: rewriting outer SRC implies rewriting inner DST and
// vice versa, because the inner packet's roles are swapped relative to
// the outer ICMP error.
func icmpErrorFixup(pkt *Packet, field Field, oldAddr, newAddr uint32) bool {
	icmp := pkt.Frame.ICMP()
	if !header.IsErrorType(icmp.Type()) {
		return true
	}

	inner := pkt.Frame.ICMPPayload()
	if len(inner) < header.IPv4HdrLen {
		return false
	}
	innerIP := header.ParseIPv4(inner)
	if innerIP.IHL() < header.IPv4HdrLen || len(inner) < innerIP.IHL() {
		return false
	}

	innerField := FieldDst
	if field == FieldDst {
		innerField = FieldSrc
	}

	var innerOld uint32
	if innerField == FieldSrc {
		innerOld = innerIP.SrcAddr()
	} else {
		innerOld = innerIP.DstAddr()
	}
	if innerOld != newAddr {
		// Not the same address the outer rewrite concerned itself with;
		// still valid, just nothing to do for this direction.
		return true
	}

	oldInnerCksum := innerIP.Checksum()
	newInnerCksum := header.ChecksumReplace32(oldInnerCksum, innerOld, oldAddr)
	if innerField == FieldSrc {
		innerIP.SetSrcAddr(oldAddr)
	} else {
		innerIP.SetDstAddr(oldAddr)
	}
	innerIP.SetChecksum(newInnerCksum)

	// Two incremental ICMP checksum updates: one for the change to the
	// inner IPv4 checksum field, one for the change to the inner
	// address field.
	c := header.ChecksumReplace16(icmp.Checksum(), oldInnerCksum, newInnerCksum)
	c = header.ChecksumReplace32(c, innerOld, oldAddr)
	icmp.SetChecksum(c)
	return true
}

// ActionOut is action_out({port,vlan,next_hop_mac}): finalizes the
// Ethernet/VLAN/offload fields and enqueues the packet for transmission,
// per spec.md §4.D. Always terminal.
func ActionOut(pkt *Packet, ctx Context, param any) Verdict {
	target := param.(OutTarget)
	eth := pkt.Frame.Ethernet()

	eth.SetSrc(ctx.PortMAC(target.Port))
	eth.SetDst(target.NextHopMAC)

	pkt.Buf.Offload |= iopkt.OffloadIPv4Checksum
	if pkt.Frame.HasL4() {
		ip := pkt.Frame.IPv4()
		firstFragment := !ip.IsFragment() || ip.FirstFragment()
		if firstFragment {
			switch pkt.Frame.L4Proto() {
			case header.ProtoTCP:
				pkt.Buf.Offload |= iopkt.OffloadTCPChecksum
			case header.ProtoUDP, header.ProtoUDPLite:
				pkt.Buf.Offload |= iopkt.OffloadUDPChecksum
			}
		}
		// Non-first fragments never get here: ParseFrame reports no L4
		// header for them, so neither l4Fixup nor this block touches
		// their L4 checksum.
	}

	pkt.Buf.VLANTCI = target.VLAN
	if target.VLAN != 0 {
		pkt.Buf.Offload |= iopkt.OffloadVLANInsert
	}

	ctx.Enqueue(target.Port, pkt.Buf)
	return Terminal
}

func uint32ToIP(a uint32) net.IP {
	return net.IPv4(byte(a>>24), byte(a>>16), byte(a>>8), byte(a))
}
