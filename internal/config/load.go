// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"encoding/binary"
	"net"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/vishvananda/netlink"

	natgwerrors "github.com/natgw/natgw/internal/errors"
	"github.com/natgw/natgw/internal/nattable"
	"github.com/natgw/natgw/internal/netutil"
	"github.com/natgw/natgw/internal/rules"
)

// Load reads and validates path, builds the NAT table and rule tree, and
// resolves each port's interface MAC/MTU, returning a fresh Config whose
// Used() is false. Per spec.md §4.I, a malformed file returns an error
// without touching any previously loaded configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, natgwerrors.Wrap(err, natgwerrors.KindNotFound, "read config file")
	}
	return LoadBytes(path, data)
}

// LoadBytes parses data as HCL (filename is used only for diagnostics)
// and builds a Config exactly as Load does.
func LoadBytes(filename string, data []byte) (*Config, error) {
	var f fileSchema
	if err := hclsimple.Decode(filename, data, nil, &f); err != nil {
		return nil, natgwerrors.Wrap(err, natgwerrors.KindValidation, "parse config")
	}

	if errs := validateSchema(&f); errs.HasErrors() {
		return nil, natgwerrors.Errorf(natgwerrors.KindValidation, "invalid config: %s", errs.Error())
	}

	ports, err := buildPorts(f.Configs[0].Ports)
	if err != nil {
		return nil, err
	}

	nat := nattable.New()
	for _, nb := range f.NATs {
		for _, r := range nb.Rules {
			a, b := ipv4ToUint32(r.A), ipv4ToUint32(r.B)
			if err := nat.InsertPair(a, b); err != nil {
				return nil, natgwerrors.Wrapf(err, natgwerrors.KindValidation, "nat add rule %s %s", r.A, r.B)
			}
		}
	}

	tree, err := buildRuleTree(f.Rules, ports)
	if err != nil {
		return nil, err
	}

	return &Config{
		ID:    uuid.New(),
		Ports: ports,
		NAT:   nat,
		Rules: tree,
	}, nil
}

func buildPorts(blocks []portBlock) ([]PortConfig, error) {
	ports := make([]PortConfig, 0, len(blocks))
	for i, pb := range blocks {
		mac, mtu, err := resolveInterface(pb.Name, pb.MTU)
		if err != nil {
			return nil, natgwerrors.Wrapf(err, natgwerrors.KindUnavailable, "resolve port %q", pb.Name)
		}
		bindings := make([]AddressBinding, 0, len(pb.IPs))
		for _, ip := range pb.IPs {
			bindings = append(bindings, AddressBinding{IP: ipv4ToUint32(ip.Address), VLAN: uint16(ip.VLAN)})
		}
		ports = append(ports, PortConfig{
			Name:     pb.Name,
			Index:    i,
			MAC:      mac,
			MTU:      mtu,
			Bindings: bindings,
		})
	}
	return ports, nil
}

// resolveInterface looks up the named interface's real MAC and MTU via
// netlink (spec.md §9's ambient "bootstrapping is an external concern"
// note — the data path never touches the kernel, only load time does).
// If the interface does not exist on this host (a dev/test environment
// without the physical NICs configured), a deterministic virtual MAC is
// generated instead of failing the load outright, and the configured or
// default MTU is kept.
func resolveInterface(name string, configuredMTU int) (net.HardwareAddr, int, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		mac := netutil.GenerateVirtualMAC(name)
		mtu := configuredMTU
		if mtu == 0 {
			mtu = 1500
		}
		return net.HardwareAddr(mac), mtu, nil
	}
	attrs := link.Attrs()
	mtu := configuredMTU
	if mtu == 0 {
		mtu = attrs.MTU
	}
	return attrs.HardwareAddr, mtu, nil
}

func ipv4ToUint32(s string) uint32 {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip)
}

func isValidIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}
