// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package config loads and validates the natgwd configuration: port
// bindings, the NAT table, and the rule tree, per spec.md §6's grammar
// (`config{}`, `nat{}`, `rules{}`) and §4.I's loader contract. The on-disk
// grammar is HCL, decoded the way the teacher's own config package does
// (hashicorp/hcl/v2 + hclsimple), even though the block shapes here are
// specific to a NAT data-plane rather than a firewall policy.
package config

// fileSchema is the root HCL document: one or more `config` blocks (only
// the first is used; more than one is a validation error surfaced at
// load time, not a silent override), any number of `nat` blocks, and any
// number of `rules` blocks.
type fileSchema struct {
	Configs []configBlock `hcl:"config,block"`
	NATs    []natBlock    `hcl:"nat,block"`
	Rules   []rulesBlock  `hcl:"rules,block"`
}

// configBlock is the `config { port <N> { ... } ... }` block.
type configBlock struct {
	Ports []portBlock `hcl:"port,block"`
}

// portBlock is one `port <N> { ip <addr> [vlan <id>]; mtu <bytes>; }`.
// N labels the physical interface name the port binds to (e.g. "eth0");
// the worker's port index is assigned by load order, not by N itself.
type portBlock struct {
	Name string      `hcl:"name,label"`
	IPs  []ipBinding `hcl:"ip,block"`
	MTU  int         `hcl:"mtu,optional"`
}

// ipBinding is one `ip <addr> [vlan <id>]` line: an address the device
// answers ARP/ICMP for on this port, optionally scoped to a VLAN.
type ipBinding struct {
	Address string `hcl:"address,label"`
	VLAN    int    `hcl:"vlan,optional"`
}

// natBlock is the `nat { add rule <A> <B>; ... }` block.
type natBlock struct {
	Rules []natRuleBlock `hcl:"add,block"`
}

// natRuleBlock is one `add "rule" { a = "<A>"  b = "<B>" }` block: A and
// B are dotted-quad IPv4 attributes, and the loader does not check the
// label. InsertPair installs both directions.
type natRuleBlock struct {
	Kind string `hcl:"kind,label"` // written as "rule"; not validated
	A    string `hcl:"a,attr"`
	B    string `hcl:"b,attr"`
}

// rulesBlock is the `rules { if (cond) { actions } ... }` block: an
// ordered list of top-level statements composed into one SEQ chain.
type rulesBlock struct {
	Statements []statementBlock `hcl:"stmt,block"`
}

// statementBlock is one rule-tree statement. Exactly one of the Kind-
// specific fields is meaningful, selected by Kind; this mirrors the
// sum-type variant set of spec.md §9's design note, expressed as an HCL
// block instead of a tagged union (HCL has no native sum types).
type statementBlock struct {
	Kind string `hcl:"kind,label"`

	// action_* variants
	Field string `hcl:"field,optional"` // "src" | "dst", for nat_rewrite
	Port  string `hcl:"port,optional"`  // for out
	VLAN  int    `hcl:"vlan,optional"`  // for out
	NextHopMAC string `hcl:"next_hop_mac,optional"` // for out

	// cond_* selector and payload, meaningful only when Kind == "if".
	// Nested `if`s are how a config author expresses AND-like
	// short-circuit composition; the loader does not expose OR at the
	// grammar level (see rules.Or for the programmatic equivalent).
	Cond     string `hcl:"cond,optional"`      // "src_in_net" | "dst_in_net" | "vlan_eq"
	Network  string `hcl:"network,optional"`   // CIDR, for *_in_network
	CondVLAN int    `hcl:"cond_vlan,optional"` // for vlan_eq

	// if: a condition guarding a nested body, with an optional else
	Then []statementBlock `hcl:"then,block"`
	Else []statementBlock `hcl:"else,block"`
}
