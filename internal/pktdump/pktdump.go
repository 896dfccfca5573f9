// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package pktdump renders a human-readable packet summary for debug
// use — never the data path; no command in this repository calls it. The
// hot path parses headers with internal/header's zero-allocation views;
// this package reaches for gopacket/gopacket, whose layered decode and
// String() output exist exactly for this kind of offline/diagnostic use.
package pktdump

import (
	"fmt"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

// Summary decodes raw as an Ethernet frame and returns a one-line
// human-readable description, e.g. "10.0.0.5:53412 -> 212.47.0.9:443
// TCP". Frames this package cannot decode render as a short
// EtherType/length note instead of an error — this is a best-effort
// debug aid, not a correctness-critical parser.
func Summary(raw []byte) string {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.NoCopy)

	if l4 := pkt.TransportLayer(); l4 != nil {
		if l3 := pkt.NetworkLayer(); l3 != nil {
			src, dst := l3.NetworkFlow().Endpoints()
			srcPort, dstPort := l4.TransportFlow().Endpoints()
			return fmt.Sprintf("%s:%s -> %s:%s %s", src, srcPort, dst, dstPort, l4.LayerType())
		}
	}
	if l3 := pkt.NetworkLayer(); l3 != nil {
		src, dst := l3.NetworkFlow().Endpoints()
		return fmt.Sprintf("%s -> %s %s", src, dst, l3.LayerType())
	}
	if arp := pkt.Layer(layers.LayerTypeARP); arp != nil {
		return arp.(*layers.ARP).String()
	}
	eth := pkt.LinkLayer()
	if eth == nil {
		return fmt.Sprintf("undecodable frame, %d bytes", len(raw))
	}
	return fmt.Sprintf("%s frame, %d bytes", eth.LayerType(), len(raw))
}

// Dump returns gopacket's full layer-by-layer decode, for verbose debug
// output.
func Dump(raw []byte) string {
	pkt := gopacket.NewPacket(raw, layers.LayerTypeEthernet, gopacket.Default)
	return pkt.Dump()
}
