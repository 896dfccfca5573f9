// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"net"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/natgw/natgw/internal/nattable"
	"github.com/natgw/natgw/internal/rules"
)

// AddressBinding is one `ip <addr> [vlan <id>]` entry: an address the
// device answers ARP/ICMP for on a port, optionally scoped to a VLAN (0
// means untagged).
type AddressBinding struct {
	IP   uint32
	VLAN uint16
}

// PortConfig is spec.md §3's PortConfig: the ordered IP/VLAN bindings a
// physical port answers for, its MTU, and (resolved at load time, not
// parsed from the file) its real interface MAC address.
type PortConfig struct {
	Name     string
	Index    int
	MAC      net.HardwareAddr
	MTU      int
	Bindings []AddressBinding
}

// HasAddress reports whether ip is bound to this port on the given VLAN.
func (p PortConfig) HasAddress(vlan uint16, ip uint32) bool {
	for _, b := range p.Bindings {
		if b.VLAN == vlan && b.IP == ip {
			return true
		}
	}
	return false
}

// Config is spec.md §3's immutable Configuration: ports, the NAT table,
// and the rule tree, plus the generation id and used-flag the reload
// handshake of spec.md §4.J depends on. Once built by Load, a Config is
// never mutated — a reload always produces a new one.
type Config struct {
	ID    uuid.UUID
	Ports []PortConfig
	NAT   *nattable.Table
	Rules *rules.Node

	used atomic.Bool
}

// MarkUsed performs the release-store a worker issues at the top of its
// pipeline iteration (spec.md §4.H step 1), telling the reload
// coordinator it is safe to reclaim the previous configuration.
func (c *Config) MarkUsed() { c.used.Store(true) }

// Used is the acquire-load the reload coordinator spin-waits on
// (spec.md §4.J step 2b).
func (c *Config) Used() bool { return c.used.Load() }

// Clone returns a new Config sharing c's ports/NAT table/rule tree but
// carrying its own, independent used flag. The reload coordinator hands
// each worker its own clone of the same generation (spec.md §4.J's
// "w.next_config" is a per-worker pointer) so one worker marking its
// copy used can never short-circuit another worker's handshake.
func (c *Config) Clone() *Config {
	return &Config{ID: c.ID, Ports: c.Ports, NAT: c.NAT, Rules: c.Rules}
}

// HasAddress implements l2l3.Bindings: true iff ip is bound to the named
// port index on the given VLAN.
func (c *Config) HasAddress(port int, vlan uint16, ip uint32) bool {
	if port < 0 || port >= len(c.Ports) {
		return false
	}
	return c.Ports[port].HasAddress(vlan, ip)
}

// PortMAC implements the MAC half of rules.Context for whatever holds
// this Config (worker.Worker composes it in).
func (c *Config) PortMAC(port int) net.HardwareAddr {
	if port < 0 || port >= len(c.Ports) {
		return nil
	}
	return c.Ports[port].MAC
}

// PortByName returns a port's index, or -1 if no port has that name.
func (c *Config) PortByName(name string) int {
	for _, p := range c.Ports {
		if p.Name == name {
			return p.Index
		}
	}
	return -1
}
