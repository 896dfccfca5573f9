// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

import (
	"net"
	"testing"

	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/stretchr/testify/require"
)

var (
	port0MAC = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	port1MAC = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	peerMAC  = [6]byte{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x01}
	nextHop  = [6]byte{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x02}
)

// onesComplementChecksum is a test-only from-scratch checksum, used to
// build valid ICMP headers for input fixtures (the NAT rewrite path never
// recomputes an L4 checksum from scratch; it only updates incrementally).
func onesComplementChecksum(b []byte, skipOffset int) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		if i == skipOffset {
			continue
		}
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	return ^uint16(sum)
}

// Scenario 2 (spec.md §8.2): NAT src rewrite then out.
func TestActionNATRewrite_SrcThenOut(t *testing.T) {
	addrA := mustIP("10.0.0.5")
	addrB := mustIP("212.47.0.5")
	addrDst := mustIP("8.8.8.8")

	ctx := newFakeContext()
	require.NoError(t, ctx.nat.InsertPair(addrA, addrB))
	ctx.macs[1] = net.HardwareAddr(port1MAC[:])

	pool := iopkt.NewPool(4)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, addrA, addrDst, 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)

	v := ActionNATRewrite(pkt, ctx, FieldSrc)
	require.Equal(t, Continue, v)
	require.Equal(t, addrB, pkt.Frame.IPv4().SrcAddr())
	require.Equal(t, addrDst, pkt.Frame.IPv4().DstAddr())
	require.Equal(t, pkt.Frame.IPv4().ComputeChecksum(), pkt.Frame.IPv4().Checksum())

	v = ActionOut(pkt, ctx, OutTarget{Port: 1, VLAN: 0, NextHopMAC: net.HardwareAddr(nextHop[:])})
	require.Equal(t, Terminal, v)
	require.Len(t, ctx.enqueued, 1)
	require.Equal(t, 1, ctx.enqueued[0].port)

	eth := pkt.Frame.Ethernet()
	require.Equal(t, net.HardwareAddr(port1MAC[:]), net.HardwareAddr(eth.Src()))
	require.Equal(t, net.HardwareAddr(nextHop[:]), net.HardwareAddr(eth.Dst()))
	require.NotZero(t, pkt.Buf.Offload&iopkt.OffloadIPv4Checksum)
}

// Scenario 3 (spec.md §8.3): NAT dst rewrite, reverse direction.
func TestActionNATRewrite_Dst(t *testing.T) {
	addrA := mustIP("10.0.0.5")
	addrB := mustIP("212.47.0.5")
	addrSrc := mustIP("8.8.8.8")

	ctx := newFakeContext()
	require.NoError(t, ctx.nat.InsertPair(addrA, addrB))

	pool := iopkt.NewPool(4)
	raw := buildIPv4(peerMAC, port1MAC, header.ProtoUDP, addrSrc, addrB, 64, udpFixture())
	pkt := packetFrom(pool, 1, raw)

	v := ActionNATRewrite(pkt, ctx, FieldDst)
	require.Equal(t, Continue, v)
	require.Equal(t, addrSrc, pkt.Frame.IPv4().SrcAddr())
	require.Equal(t, addrA, pkt.Frame.IPv4().DstAddr())
	require.Equal(t, pkt.Frame.IPv4().ComputeChecksum(), pkt.Frame.IPv4().Checksum())
}

// Scenario 4 (spec.md §8.4): NAT miss drops and counts drop_no_rule.
func TestActionNATRewrite_Miss(t *testing.T) {
	ctx := newFakeContext()
	pool := iopkt.NewPool(4)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, mustIP("9.9.9.9"), mustIP("1.1.1.1"), 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)

	v := ActionNATRewrite(pkt, ctx, FieldSrc)
	require.Equal(t, Terminal, v)
	require.Equal(t, uint64(1), ctx.stats.DropNoRule.Load())
	require.Empty(t, ctx.enqueued)
}

// Scenario 5 (spec.md §8.5): ICMP error inner rewrite.
func TestActionNATRewrite_ICMPErrorInner(t *testing.T) {
	addrA := mustIP("10.0.0.5")  // private side
	addrB := mustIP("212.47.0.5") // public side
	innerDst := mustIP("8.8.8.8")

	ctx := newFakeContext()
	require.NoError(t, ctx.nat.InsertPair(addrA, addrB))

	inner := make([]byte, header.IPv4HdrLen)
	inner[0] = 0x45
	binaryPutUint16(inner[2:4], header.IPv4HdrLen)
	inner[8] = 64
	inner[9] = header.ProtoUDP
	binaryPutUint32(inner[12:16], addrA)
	binaryPutUint32(inner[16:20], innerDst)
	header.ParseIPv4(inner).SetChecksum(header.ParseIPv4(inner).ComputeChecksum())

	icmp := make([]byte, header.ICMPHdrLen+len(inner))
	icmp[0] = header.ICMPTimeExceeded
	icmp[1] = 0
	copy(icmp[8:], inner)
	binaryPutUint16(icmp[2:4], onesComplementChecksum(icmp, 2))

	// Outer packet travels public(outside) -> this NAT rewrites dst.
	outerSrc := mustIP("4.4.4.4")
	pool := iopkt.NewPool(4)
	raw := buildIPv4(peerMAC, port1MAC, header.ProtoICMP, outerSrc, addrB, 64, icmp)
	pkt := packetFrom(pool, 1, raw)

	v := ActionNATRewrite(pkt, ctx, FieldDst)
	require.Equal(t, Continue, v)
	require.Equal(t, addrA, pkt.Frame.IPv4().DstAddr())
	require.Equal(t, pkt.Frame.IPv4().ComputeChecksum(), pkt.Frame.IPv4().Checksum())

	gotICMP := pkt.Frame.ICMP()
	gotInner := header.ParseIPv4(pkt.Frame.ICMPPayload())
	require.Equal(t, addrB, gotInner.SrcAddr(), "inner src should flip to the public address")
	require.Equal(t, gotInner.ComputeChecksum(), gotInner.Checksum())

	full := append([]byte{}, pkt.Buf.Bytes()[pkt.Frame.L4Offset():]...)
	require.Equal(t, onesComplementChecksum(full, 2), gotICMP.Checksum())
}

func TestActionDrop_AlwaysCountsAndReleases(t *testing.T) {
	ctx := newFakeContext()
	pool := iopkt.NewPool(2)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, mustIP("1.1.1.1"), mustIP("2.2.2.2"), 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)

	v := ActionDrop(pkt, ctx, nil)
	require.Equal(t, Terminal, v)
	require.Equal(t, uint64(1), ctx.stats.DropNATCondition.Load())
	require.Equal(t, 1, ctx.released)
}

func TestActionPrint_NeverAltersOrTerminates(t *testing.T) {
	ctx := newFakeContext()
	pool := iopkt.NewPool(2)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, mustIP("1.1.1.1"), mustIP("2.2.2.2"), 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)
	before := append([]byte{}, pkt.Buf.Bytes()...)

	v := ActionPrint(pkt, ctx, nil)
	require.Equal(t, Continue, v)
	require.Equal(t, before, pkt.Buf.Bytes())
	require.Len(t, ctx.logs, 1)
}

func udpFixture() []byte {
	b := make([]byte, header.UDPHdrLen)
	binaryPutUint16(b[0:2], 40000)
	binaryPutUint16(b[2:4], 53)
	binaryPutUint16(b[4:6], header.UDPHdrLen)
	return b
}

func binaryPutUint16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func binaryPutUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
