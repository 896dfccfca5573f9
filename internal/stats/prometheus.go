// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package stats

import "github.com/prometheus/client_golang/prometheus"

// Exporter is a prometheus.Collector reading the aggregated counters of
// every worker's Block fresh on each scrape, for the admin HTTP
// surface's `/metrics` endpoint (SPEC_FULL.md §4.K). It never caches a
// value between scrapes: Aggregate is cheap (one atomic load per field
// per worker) and a cached copy could lag a concurrent worker update.
type Exporter struct {
	blocks []*Block
	descs  []*prometheus.Desc
	get    []func(Snapshot) uint64
}

// NewExporter builds an Exporter over the given per-worker blocks.
func NewExporter(blocks []*Block) *Exporter {
	fields := []struct {
		name string
		help string
		get  func(Snapshot) uint64
	}{
		{"natgw_drop_no_rule_total", "Packets dropped by action_nat_rewrite because the NAT table has no entry for the address.", func(s Snapshot) uint64 { return s.DropNoRule }},
		{"natgw_drop_nat_condition_total", "Packets dropped by action_drop.", func(s Snapshot) uint64 { return s.DropNATCondition }},
		{"natgw_drop_bad_l3_checksum_total", "Packets dropped for a bad IPv4 header checksum.", func(s Snapshot) uint64 { return s.DropBadL3Checksum }},
		{"natgw_rx_bad_l4_checksum_total", "Packets received with a bad L4 checksum (not dropped, counted only).", func(s Snapshot) uint64 { return s.RxBadL4Checksum }},
		{"natgw_drop_unknown_icmp_total", "Own-address ICMP packets of an unhandled type.", func(s Snapshot) uint64 { return s.DropUnknownICMP }},
		{"natgw_drop_unhandled_ethertype_total", "Packets dropped for an unhandled EtherType.", func(s Snapshot) uint64 { return s.DropUnhandledEthertype }},
		{"natgw_drop_tx_notsent_total", "Packets the NIC refused to accept on transmit.", func(s Snapshot) uint64 { return s.DropTXNotSent }},
	}

	e := &Exporter{blocks: blocks}
	for _, f := range fields {
		e.descs = append(e.descs, prometheus.NewDesc(f.name, f.help, nil, nil))
		e.get = append(e.get, f.get)
	}
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range e.descs {
		ch <- d
	}
}

// Collect implements prometheus.Collector: one Aggregate pass per scrape.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	snap := Aggregate(e.blocks)
	for i, d := range e.descs {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(e.get[i](snap)))
	}
}

// Registry builds a fresh registry with this Exporter registered, for
// mounting behind promhttp.HandlerFor in internal/admin.
func (e *Exporter) Registry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(e)
	return r
}
