// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"encoding/binary"
	"net"

	"gopkg.in/yaml.v3"
)

// dumpPort is the YAML-friendly projection of a PortConfig: addresses
// and the MAC are rendered as strings rather than raw bytes, since this
// output exists for an operator to read (`natgwctl config dump`), not
// for the loader to consume.
type dumpPort struct {
	Name     string       `yaml:"name"`
	MAC      string       `yaml:"mac"`
	MTU      int          `yaml:"mtu"`
	Bindings []dumpBind   `yaml:"bindings"`
}

type dumpBind struct {
	IP   string `yaml:"ip"`
	VLAN uint16 `yaml:"vlan,omitempty"`
}

type dumpConfig struct {
	ID       string     `yaml:"id"`
	Ports    []dumpPort `yaml:"ports"`
	NATPairs int        `yaml:"nat_pairs"`
}

// DumpYAML renders a human-readable snapshot of c, for the secondary
// `natgwctl config dump` debug export (SPEC_FULL.md §4.I) — never the
// load grammar, which stays HCL.
func (c *Config) DumpYAML() ([]byte, error) {
	out := dumpConfig{ID: c.ID.String(), NATPairs: c.NAT.Pairs()}
	for _, p := range c.Ports {
		dp := dumpPort{Name: p.Name, MAC: p.MAC.String(), MTU: p.MTU}
		for _, b := range p.Bindings {
			dp.Bindings = append(dp.Bindings, dumpBind{IP: formatIPv4(b.IP), VLAN: b.VLAN})
		}
		out.Ports = append(out.Ports, dp)
	}
	return yaml.Marshal(out)
}

func formatIPv4(a uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], a)
	return net.IP(b[:]).String()
}
