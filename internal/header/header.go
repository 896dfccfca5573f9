// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package header provides zero-allocation, byte-offset typed views over
// Ethernet/ARP/IPv4/ICMP/TCP/UDP frames, plus the incremental one's
// complement checksum arithmetic the NAT rewrite path depends on. Every
// accessor here operates directly on the packet's backing buffer: no
// accessor here allocates, and none may be called off a buffer shorter
// than the field it reads without an explicit bounds check first.
package header

import "encoding/binary"

// EtherType values in host byte order. Ethernet.EtherType and
// VLAN.InnerEtherType decode the big-endian wire field before it is
// compared against these, so each demux costs one byte-order conversion.
const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeARP  uint16 = 0x0806
	EtherTypeVLAN uint16 = 0x8100
)

// IP protocol numbers relevant to the action/condition primitives.
const (
	ProtoICMP    uint8 = 1
	ProtoTCP     uint8 = 6
	ProtoUDP     uint8 = 17
	ProtoUDPLite uint8 = 136
)

// ICMP types handled by the error-rewrite and echo-reply paths.
const (
	ICMPEchoReply      uint8 = 0
	ICMPDestUnreach    uint8 = 3
	ICMPEchoRequest    uint8 = 8
	ICMPTimeExceeded   uint8 = 11
	ICMPParamProblem   uint8 = 12
)

const (
	EthHdrLen  = 14
	VLANHdrLen = 4
	ARPHdrLen  = 28
	IPv4HdrLen = 20 // minimum; IHL may specify more
	ICMPHdrLen = 8
	TCPHdrLen  = 20 // minimum; data offset may specify more
	UDPHdrLen  = 8
)

// Ethernet is a typed view over an Ethernet II header.
type Ethernet struct {
	b []byte
}

// ParseEthernet returns a view over b's first 14 bytes. The caller must
// ensure len(b) >= EthHdrLen.
func ParseEthernet(b []byte) Ethernet { return Ethernet{b} }

func (e Ethernet) Dst() []byte      { return e.b[0:6] }
func (e Ethernet) Src() []byte      { return e.b[6:12] }
func (e Ethernet) EtherType() uint16 { return binary.BigEndian.Uint16(e.b[12:14]) }
func (e Ethernet) SetDst(mac []byte) { copy(e.b[0:6], mac) }
func (e Ethernet) SetSrc(mac []byte) { copy(e.b[6:12], mac) }
func (e Ethernet) SetEtherType(t uint16) {
	binary.BigEndian.PutUint16(e.b[12:14], t)
}

// SwapSrcDst exchanges the source and destination MACs in place.
func (e Ethernet) SwapSrcDst() {
	var tmp [6]byte
	copy(tmp[:], e.Dst())
	e.SetDst(e.Src())
	e.SetSrc(tmp[:])
}

// VLAN is a typed view over an 802.1Q tag that follows the Ethernet
// header (replacing what would otherwise be the EtherType field).
type VLAN struct {
	b []byte
}

func ParseVLAN(b []byte) VLAN { return VLAN{b} }

// TCI returns the full tag control information word.
func (v VLAN) TCI() uint16 { return binary.BigEndian.Uint16(v.b[0:2]) }

// ID returns the low 12 bits of the TCI.
func (v VLAN) ID() uint16 { return v.TCI() & 0x0fff }

func (v VLAN) SetID(id uint16) {
	tci := v.TCI()&0xf000 | (id & 0x0fff)
	binary.BigEndian.PutUint16(v.b[0:2], tci)
}

func (v VLAN) InnerEtherType() uint16 { return binary.BigEndian.Uint16(v.b[2:4]) }

// IPv4 is a typed view over an IPv4 header (fixed + options).
type IPv4 struct {
	b []byte
}

func ParseIPv4(b []byte) IPv4 { return IPv4{b} }

func (h IPv4) VersionIHL() uint8  { return h.b[0] }
func (h IPv4) IHL() int           { return int(h.b[0]&0x0f) * 4 }
func (h IPv4) TOS() uint8         { return h.b[1] }
func (h IPv4) TotalLen() uint16   { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h IPv4) ID() uint16         { return binary.BigEndian.Uint16(h.b[4:6]) }
func (h IPv4) FlagsFragOff() uint16 { return binary.BigEndian.Uint16(h.b[6:8]) }
func (h IPv4) MoreFragments() bool { return h.FlagsFragOff()&0x2000 != 0 }
func (h IPv4) FragOffset() uint16  { return h.FlagsFragOff() & 0x1fff }
func (h IPv4) IsFragment() bool    { return h.MoreFragments() || h.FragOffset() != 0 }
func (h IPv4) FirstFragment() bool { return h.FragOffset() == 0 }
func (h IPv4) TTL() uint8         { return h.b[8] }
func (h IPv4) Protocol() uint8    { return h.b[9] }
func (h IPv4) Checksum() uint16   { return binary.BigEndian.Uint16(h.b[10:12]) }
func (h IPv4) SrcAddr() uint32    { return binary.BigEndian.Uint32(h.b[12:16]) }
func (h IPv4) DstAddr() uint32    { return binary.BigEndian.Uint32(h.b[16:20]) }

func (h IPv4) SetTTL(t uint8)           { h.b[8] = t }
func (h IPv4) SetChecksum(c uint16)     { binary.BigEndian.PutUint16(h.b[10:12], c) }
func (h IPv4) SetSrcAddr(a uint32)      { binary.BigEndian.PutUint32(h.b[12:16], a) }
func (h IPv4) SetDstAddr(a uint32)      { binary.BigEndian.PutUint32(h.b[16:20], a) }

// Payload returns the bytes following the (possibly option-extended)
// IPv4 header, per IHL.
func (h IPv4) Payload() []byte { return h.b[h.IHL():] }

// ComputeChecksum recomputes the header checksum from scratch (used only
// by tests; the hot path uses incremental updates).
func (h IPv4) ComputeChecksum() uint16 {
	return checksumRFC1071(h.b[:h.IHL()], 10)
}

// ICMP is a typed view over an ICMP header.
type ICMP struct {
	b []byte
}

func ParseICMP(b []byte) ICMP { return ICMP{b} }

func (h ICMP) Type() uint8        { return h.b[0] }
func (h ICMP) Code() uint8        { return h.b[1] }
func (h ICMP) Checksum() uint16   { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h ICMP) RestOfHeader() uint32 { return binary.BigEndian.Uint32(h.b[4:8]) }
func (h ICMP) Payload() []byte    { return h.b[8:] }

func (h ICMP) SetType(t uint8)      { h.b[0] = t }
func (h ICMP) SetChecksum(c uint16) { binary.BigEndian.PutUint16(h.b[2:4], c) }

// IsErrorType reports whether t carries an embedded offending IPv4
// packet per spec: destination-unreachable, time-exceeded, param-problem.
func IsErrorType(t uint8) bool {
	return t == ICMPDestUnreach || t == ICMPTimeExceeded || t == ICMPParamProblem
}

// TCP is a typed view over a TCP header.
type TCP struct {
	b []byte
}

func ParseTCP(b []byte) TCP { return TCP{b} }

func (h TCP) SrcPort() uint16  { return binary.BigEndian.Uint16(h.b[0:2]) }
func (h TCP) DstPort() uint16  { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h TCP) Checksum() uint16 { return binary.BigEndian.Uint16(h.b[16:18]) }
func (h TCP) Flags() uint8     { return h.b[13] }
func (h TCP) SetChecksum(c uint16) { binary.BigEndian.PutUint16(h.b[16:18], c) }

const (
	TCPFlagFin uint8 = 1 << 0
	TCPFlagRst uint8 = 1 << 2
	TCPFlagAck uint8 = 1 << 4
)

// UDP is a typed view over a UDP/UDP-Lite header.
type UDP struct {
	b []byte
}

func ParseUDP(b []byte) UDP { return UDP{b} }

func (h UDP) SrcPort() uint16  { return binary.BigEndian.Uint16(h.b[0:2]) }
func (h UDP) DstPort() uint16  { return binary.BigEndian.Uint16(h.b[2:4]) }
func (h UDP) Length() uint16   { return binary.BigEndian.Uint16(h.b[4:6]) }
func (h UDP) Checksum() uint16 { return binary.BigEndian.Uint16(h.b[6:8]) }
func (h UDP) SetChecksum(c uint16) { binary.BigEndian.PutUint16(h.b[6:8], c) }

// checksumRFC1071 computes the one's-complement checksum over b, treating
// the two bytes at offset skipField as zero (the field being computed).
func checksumRFC1071(b []byte, skipField int) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		if i == skipField {
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
