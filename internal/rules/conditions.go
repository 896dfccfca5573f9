// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

// CondFunc is a condition primitive: a pure predicate over a packet and
// its leaf's opaque parameter (spec.md §3 COND leaf, §4.E).
type CondFunc func(pkt *Packet, param any) bool

// Network is the (ip, prefix_len) pair the *_in_network conditions
// match against.
type Network struct {
	IP        uint32
	PrefixLen int
}

func (n Network) mask() uint32 {
	if n.PrefixLen <= 0 {
		return 0
	}
	if n.PrefixLen >= 32 {
		return 0xffffffff
	}
	return ^uint32(0) << (32 - n.PrefixLen)
}

// Contains reports whether addr falls within the network, per spec.md
// §4.E: prefix_len == 0 always matches.
func (n Network) Contains(addr uint32) bool {
	m := n.mask()
	return addr&m == n.IP&m
}

// CondIPv4SrcInNetwork is cond_ipv4_src_in_network(pkt, net).
func CondIPv4SrcInNetwork(pkt *Packet, param any) bool {
	net := param.(Network)
	if !pkt.Frame.IsIPv4() {
		return false
	}
	return net.Contains(pkt.Frame.IPv4().SrcAddr())
}

// CondIPv4DstInNetwork is cond_ipv4_dst_in_network(pkt, net).
func CondIPv4DstInNetwork(pkt *Packet, param any) bool {
	net := param.(Network)
	if !pkt.Frame.IsIPv4() {
		return false
	}
	return net.Contains(pkt.Frame.IPv4().DstAddr())
}

// CondVLAN is cond_vlan(pkt, vlan_id): true iff the packet's VLAN id
// (0 for untagged) equals the configured id.
func CondVLAN(pkt *Packet, param any) bool {
	vlanID := param.(uint16)
	return pkt.Frame.VLANID() == vlanID
}
