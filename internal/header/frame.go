// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package header

import "errors"

// ErrTruncated is returned when a frame is shorter than the header it
// claims to carry; callers must drop the packet and count it, never
// dereference past the buffer (spec.md §7 malformed-packet policy).
var ErrTruncated = errors.New("header: truncated frame")

// Frame is a parsed view over one Ethernet frame: it locates (without
// copying) the Ethernet header, an optional single VLAN tag, and an
// IPv4/ARP payload if present. Every offset is computed once, at parse
// time, and reused by every handler/action that touches this packet.
type Frame struct {
	buf []byte

	hasVLAN bool
	vlanOff int
	l3Off   int

	ethType uint16 // the EtherType that determined L3Off (post-VLAN)

	isIPv4  bool
	l4Off   int
	proto   uint8
	hasL4   bool
}

// ParseFrame parses buf far enough to locate an IPv4/ARP payload and,
// for IPv4, its L4 header. It never returns an error for an unknown
// ethertype or unknown L4 protocol — callers distinguish those cases
// with IsIPv4/IsARP/L4Proto — only for frames too short to hold the
// headers they claim to.
func ParseFrame(buf []byte) (*Frame, error) {
	if len(buf) < EthHdrLen {
		return nil, ErrTruncated
	}
	f := &Frame{buf: buf, l3Off: EthHdrLen}
	eth := ParseEthernet(buf)
	et := eth.EtherType()

	if et == EtherTypeVLAN {
		if len(buf) < EthHdrLen+VLANHdrLen {
			return nil, ErrTruncated
		}
		f.hasVLAN = true
		f.vlanOff = EthHdrLen
		v := ParseVLAN(buf[f.vlanOff:])
		et = v.InnerEtherType()
		f.l3Off = EthHdrLen + VLANHdrLen
	}
	f.ethType = et

	if et == EtherTypeARP && len(buf) < f.l3Off+ARPHdrLen {
		return nil, ErrTruncated
	}
	if et != EtherTypeIPv4 {
		return f, nil
	}
	if len(buf) < f.l3Off+IPv4HdrLen {
		return nil, ErrTruncated
	}
	f.isIPv4 = true
	ip := ParseIPv4(buf[f.l3Off:])
	ihl := ip.IHL()
	if ihl < IPv4HdrLen || len(buf) < f.l3Off+ihl {
		return nil, ErrTruncated
	}
	f.l4Off = f.l3Off + ihl
	f.proto = ip.Protocol()

	// Only the first fragment (or a non-fragmented packet) carries a
	// meaningful L4 header at this offset.
	if !ip.IsFragment() || ip.FirstFragment() {
		switch f.proto {
		case ProtoTCP:
			f.hasL4 = len(buf) >= f.l4Off+TCPHdrLen
		case ProtoUDP, ProtoUDPLite:
			f.hasL4 = len(buf) >= f.l4Off+UDPHdrLen
		case ProtoICMP:
			f.hasL4 = len(buf) >= f.l4Off+ICMPHdrLen
		}
	}
	return f, nil
}

func (f *Frame) Ethernet() Ethernet { return ParseEthernet(f.buf) }

func (f *Frame) VLAN() (VLAN, bool) {
	if !f.hasVLAN {
		return VLAN{}, false
	}
	return ParseVLAN(f.buf[f.vlanOff:]), true
}

// VLANID returns the packet's VLAN id, or 0 for an untagged frame
// (matching cond_vlan's treatment of "untagged" as vlan 0).
func (f *Frame) VLANID() uint16 {
	if v, ok := f.VLAN(); ok {
		return v.ID()
	}
	return 0
}

func (f *Frame) EtherType() uint16 { return f.ethType }
func (f *Frame) IsIPv4() bool      { return f.isIPv4 }
func (f *Frame) IsARP() bool       { return f.ethType == EtherTypeARP }

func (f *Frame) IPv4() IPv4 { return ParseIPv4(f.buf[f.l3Off:]) }

// ARP returns a view over the ARP message, valid only when IsARP.
func (f *Frame) ARP() ARP { return ParseARP(f.buf[f.l3Off:]) }

func (f *Frame) L4Proto() uint8 { return f.proto }
func (f *Frame) HasL4() bool    { return f.hasL4 }

func (f *Frame) TCP() TCP   { return ParseTCP(f.buf[f.l4Off:]) }
func (f *Frame) UDP() UDP   { return ParseUDP(f.buf[f.l4Off:]) }
func (f *Frame) ICMP() ICMP { return ParseICMP(f.buf[f.l4Off:]) }

// ICMPPayload returns the bytes following the ICMP header: for an error
// type this is the embedded offending IPv4 packet.
func (f *Frame) ICMPPayload() []byte { return f.buf[f.l4Off+ICMPHdrLen:] }

// L3Offset and L4Offset expose raw offsets for action_nat_rewrite's
// inner-packet handling, which must re-parse a nested Frame starting at
// ICMPPayload().
func (f *Frame) L3Offset() int { return f.l3Off }
func (f *Frame) L4Offset() int { return f.l4Off }

// OuterEthernetLen returns how many bytes precede the IPv4 header: 14
// for untagged, 18 for a single VLAN tag. Used by the "Nexus 9000 untag
// fix" in the IPv4 handler.
func (f *Frame) OuterEthernetLen() int { return f.l3Off }
