// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

import (
	"testing"

	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/stretchr/testify/require"
)

func TestNetwork_ContainsRespectsPrefix(t *testing.T) {
	net24 := Network{IP: mustIP("10.0.0.0"), PrefixLen: 24}
	require.True(t, net24.Contains(mustIP("10.0.0.5")))
	require.False(t, net24.Contains(mustIP("10.0.1.5")))

	any := Network{IP: mustIP("0.0.0.0"), PrefixLen: 0}
	require.True(t, any.Contains(mustIP("1.2.3.4")))

	host := Network{IP: mustIP("10.0.0.5"), PrefixLen: 32}
	require.True(t, host.Contains(mustIP("10.0.0.5")))
	require.False(t, host.Contains(mustIP("10.0.0.6")))
}

func TestCondIPv4SrcInNetwork(t *testing.T) {
	pool := iopkt.NewPool(1)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, mustIP("10.0.0.5"), mustIP("8.8.8.8"), 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)

	require.True(t, CondIPv4SrcInNetwork(pkt, Network{IP: mustIP("10.0.0.0"), PrefixLen: 24}))
	require.False(t, CondIPv4SrcInNetwork(pkt, Network{IP: mustIP("192.168.0.0"), PrefixLen: 16}))
}

func TestCondIPv4DstInNetwork(t *testing.T) {
	pool := iopkt.NewPool(1)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, mustIP("10.0.0.5"), mustIP("8.8.8.8"), 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)

	require.True(t, CondIPv4DstInNetwork(pkt, Network{IP: mustIP("8.8.8.0"), PrefixLen: 24}))
}

func TestCondVLAN_UntaggedIsZero(t *testing.T) {
	pool := iopkt.NewPool(1)
	raw := buildIPv4(peerMAC, port0MAC, header.ProtoUDP, mustIP("10.0.0.5"), mustIP("8.8.8.8"), 64, udpFixture())
	pkt := packetFrom(pool, 0, raw)

	require.True(t, CondVLAN(pkt, uint16(0)))
	require.False(t, CondVLAN(pkt, uint16(100)))
}
