// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

import (
	"encoding/binary"
	"net"

	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/nattable"
	"github.com/natgw/natgw/internal/stats"
)

func mustIP(s string) uint32 {
	ip := net.ParseIP(s).To4()
	return binary.BigEndian.Uint32(ip)
}

// buildIPv4 assembles an untagged Ethernet/IPv4[/L4] frame with a valid
// checksum, for use as test input. l4 is raw bytes following the IPv4
// header (already including any ICMP/TCP/UDP checksum the scenario
// wants); pass nil for a bare IPv4 header.
func buildIPv4(srcMAC, dstMAC [6]byte, proto uint8, src, dst uint32, ttl uint8, l4 []byte) []byte {
	total := header.EthHdrLen + header.IPv4HdrLen + len(l4)
	buf := make([]byte, total)

	eth := header.ParseEthernet(buf)
	eth.SetDst(dstMAC[:])
	eth.SetSrc(srcMAC[:])
	eth.SetEtherType(header.EtherTypeIPv4)

	ipb := buf[header.EthHdrLen:]
	ipb[0] = 0x45
	binary.BigEndian.PutUint16(ipb[2:4], uint16(header.IPv4HdrLen+len(l4)))
	ipb[8] = ttl
	ipb[9] = proto
	binary.BigEndian.PutUint32(ipb[12:16], src)
	binary.BigEndian.PutUint32(ipb[16:20], dst)
	copy(ipb[header.IPv4HdrLen:], l4)

	cksum := header.ParseIPv4(ipb).ComputeChecksum()
	header.ParseIPv4(ipb).SetChecksum(cksum)
	return buf
}

// packetFrom wraps raw bytes in a *Packet backed by a pooled Buffer, as
// the L2/L3 handler would hand to the executor.
func packetFrom(pool *iopkt.Pool, rxPort int, raw []byte) *Packet {
	buf := pool.Get()
	buf.SetLength(len(raw))
	copy(buf.Bytes(), raw)
	buf.RxPort = rxPort

	f, err := header.ParseFrame(buf.Bytes())
	if err != nil {
		panic(err)
	}
	return &Packet{Buf: buf, Frame: f, RxPort: rxPort}
}

// fakeContext is a minimal rules.Context for tests: one NAT table, one
// stats block, a fixed MAC per port, and recorders for enqueue/release.
type fakeContext struct {
	nat   *nattable.Table
	stats *stats.Block
	macs  map[int]net.HardwareAddr

	enqueued []enqueued
	released int
	logs     []string
}

type enqueued struct {
	port int
	buf  *iopkt.Buffer
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		nat:   nattable.New(),
		stats: &stats.Block{},
		macs:  map[int]net.HardwareAddr{},
	}
}

func (c *fakeContext) NAT() *nattable.Table     { return c.nat }
func (c *fakeContext) Stats() *stats.Block      { return c.stats }
func (c *fakeContext) PortMAC(port int) net.HardwareAddr { return c.macs[port] }

func (c *fakeContext) Enqueue(port int, buf *iopkt.Buffer) {
	c.enqueued = append(c.enqueued, enqueued{port, buf})
}

func (c *fakeContext) Release(buf *iopkt.Buffer) {
	c.released++
	iopkt.Release(buf)
}

func (c *fakeContext) Logf(format string, args ...any) {
	c.logs = append(c.logs, format)
}
