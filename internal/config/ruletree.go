// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"net"
	"strconv"
	"strings"

	natgwerrors "github.com/natgw/natgw/internal/errors"
	"github.com/natgw/natgw/internal/rules"
)

// buildRuleTree turns the parsed `rules { ... }` blocks into one rules.Node
// (chaining multiple rules blocks, and the statements within each, with
// SEQ), per spec.md §4.I "builds the rule AST".
func buildRuleTree(blocks []rulesBlock, ports []PortConfig) (*rules.Node, error) {
	var all []statementBlock
	for _, b := range blocks {
		all = append(all, b.Statements...)
	}
	return buildSeq(all, ports)
}

func buildSeq(stmts []statementBlock, ports []PortConfig) (*rules.Node, error) {
	if len(stmts) == 0 {
		return nil, nil
	}
	head, err := buildStatement(stmts[0], ports)
	if err != nil {
		return nil, err
	}
	rest, err := buildSeq(stmts[1:], ports)
	if err != nil {
		return nil, err
	}
	if rest == nil {
		return head, nil
	}
	return rules.Seq(head, rest), nil
}

func buildStatement(s statementBlock, ports []PortConfig) (*rules.Node, error) {
	switch s.Kind {
	case "drop":
		return rules.ActionLeaf(rules.ActionDrop, nil), nil

	case "print":
		return rules.ActionLeaf(rules.ActionPrint, nil), nil

	case "nat_rewrite":
		field, err := parseField(s.Field)
		if err != nil {
			return nil, err
		}
		return rules.ActionLeaf(rules.ActionNATRewrite, field), nil

	case "out":
		target, err := buildOutTarget(s, ports)
		if err != nil {
			return nil, err
		}
		return rules.ActionLeaf(rules.ActionOut, target), nil

	case "if":
		cond, err := buildCond(s)
		if err != nil {
			return nil, err
		}
		body, err := buildSeq(s.Then, ports)
		if err != nil {
			return nil, err
		}
		els, err := buildSeq(s.Else, ports)
		if err != nil {
			return nil, err
		}
		return rules.If(rules.CondNode(cond, nil, body), els), nil

	default:
		return nil, natgwerrors.Errorf(natgwerrors.KindValidation, "rules: unknown statement kind %q", s.Kind)
	}
}

func parseField(s string) (rules.Field, error) {
	switch s {
	case "src":
		return rules.FieldSrc, nil
	case "dst":
		return rules.FieldDst, nil
	default:
		return 0, natgwerrors.Errorf(natgwerrors.KindValidation, "nat_rewrite: field must be \"src\" or \"dst\", got %q", s)
	}
}

func buildOutTarget(s statementBlock, ports []PortConfig) (rules.OutTarget, error) {
	idx := -1
	for _, p := range ports {
		if p.Name == s.Port {
			idx = p.Index
			break
		}
	}
	if idx < 0 {
		return rules.OutTarget{}, natgwerrors.Errorf(natgwerrors.KindValidation, "out: unknown port %q", s.Port)
	}
	var mac net.HardwareAddr
	if s.NextHopMAC != "" {
		parsed, err := net.ParseMAC(s.NextHopMAC)
		if err != nil {
			return rules.OutTarget{}, natgwerrors.Wrapf(err, natgwerrors.KindValidation, "out: next_hop_mac %q", s.NextHopMAC)
		}
		mac = parsed
	}
	return rules.OutTarget{Port: idx, VLAN: uint16(s.VLAN), NextHopMAC: mac}, nil
}

func buildCond(s statementBlock) (rules.CondFunc, error) {
	switch s.Cond {
	case "src_in_net":
		n, err := parseNetwork(s.Network)
		if err != nil {
			return nil, err
		}
		return func(pkt *rules.Packet, _ any) bool { return rules.CondIPv4SrcInNetwork(pkt, n) }, nil
	case "dst_in_net":
		n, err := parseNetwork(s.Network)
		if err != nil {
			return nil, err
		}
		return func(pkt *rules.Packet, _ any) bool { return rules.CondIPv4DstInNetwork(pkt, n) }, nil
	case "vlan_eq":
		vlan := uint16(s.CondVLAN)
		return func(pkt *rules.Packet, _ any) bool { return rules.CondVLAN(pkt, vlan) }, nil
	default:
		return nil, natgwerrors.Errorf(natgwerrors.KindValidation, "if: unknown cond %q", s.Cond)
	}
}

func parseNetwork(cidr string) (rules.Network, error) {
	parts := strings.SplitN(cidr, "/", 2)
	if len(parts) != 2 {
		return rules.Network{}, natgwerrors.Errorf(natgwerrors.KindValidation, "network %q must be in CIDR form", cidr)
	}
	if !isValidIPv4(parts[0]) {
		return rules.Network{}, natgwerrors.Errorf(natgwerrors.KindValidation, "network %q: invalid address", cidr)
	}
	prefixLen, err := strconv.Atoi(parts[1])
	if err != nil || prefixLen < 0 || prefixLen > 32 {
		return rules.Network{}, natgwerrors.Errorf(natgwerrors.KindValidation, "network %q: invalid prefix length", cidr)
	}
	return rules.Network{IP: ipv4ToUint32(parts[0]), PrefixLen: prefixLen}, nil
}
