// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package worker

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/natgw/natgw/internal/config"
	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/nattable"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Ports: []config.PortConfig{
			{Name: "p0", Index: 0, MAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 1}},
			{Name: "p1", Index: 1, MAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 2}},
		},
		NAT:   nattable.New(),
		Rules: nil, // empty tree: every packet falls through to Continue
	}
}

func buildUntaggedIPv4(t *testing.T, payloadLen int) []byte {
	t.Helper()
	buf := make([]byte, header.EthHdrLen+header.IPv4HdrLen+payloadLen)
	copy(buf[0:6], []byte{0x02, 0, 0, 0, 0, 9})
	copy(buf[6:12], []byte{0x02, 0, 0, 0, 0, 1})
	buf[12] = 0x08
	buf[13] = 0x00
	ip := buf[header.EthHdrLen:]
	ip[0] = 0x45
	ip[2] = byte((header.IPv4HdrLen + payloadLen) >> 8)
	ip[3] = byte(header.IPv4HdrLen + payloadLen)
	ip[8] = 64
	ip[9] = 17 // UDP
	copy(ip[12:16], []byte{10, 0, 0, 9})
	copy(ip[16:20], []byte{10, 0, 0, 1})
	return buf
}

func TestWorker_DispatchReleasesOnTruncatedFrame(t *testing.T) {
	cfg := testConfig(t)
	w := New(0, nil, cfg, nil, 4)
	w.active = cfg

	pool := iopkt.NewPool(1)
	buf := pool.Get()
	buf.SetLength(4) // shorter than an Ethernet header
	buf.RxPort = 0

	w.dispatch(buf)

	require.NotNil(t, pool.Get(), "buffer should have been released back to the pool")
}

func TestWorker_DispatchReleasesOnContinueVerdict(t *testing.T) {
	cfg := testConfig(t)
	w := New(0, nil, cfg, nil, 4)
	w.active = cfg

	pool := iopkt.NewPool(1)
	buf := pool.Get()
	raw := buildUntaggedIPv4(t, 8)
	buf.SetLength(len(raw))
	copy(buf.Bytes(), raw)
	buf.RxPort = 0

	w.dispatch(buf)

	require.NotNil(t, pool.Get(), "an empty rule tree must drop via release, not leak the buffer")
}

func TestWorker_EnqueueOutOfRangePortCountsAndReleases(t *testing.T) {
	cfg := testConfig(t)
	w := New(0, nil, cfg, nil, 4)
	w.active = cfg

	pool := iopkt.NewPool(1)
	buf := pool.Get()

	w.Enqueue(7, buf)

	require.Equal(t, uint64(1), w.Stats().DropTXNotSent.Load())
	require.NotNil(t, pool.Get(), "out-of-range enqueue must release the buffer")
}

func TestWorker_AdoptPendingConfigSwapsAndMarksUsed(t *testing.T) {
	oldCfg := testConfig(t)
	w := New(0, nil, oldCfg, nil, 4)
	w.active = oldCfg
	oldCfg.MarkUsed()

	newCfg := testConfig(t)
	require.False(t, newCfg.Used())

	w.Reload(newCfg)
	w.adoptPendingConfig()

	require.Same(t, newCfg, w.active)
	require.True(t, newCfg.Used())
	require.Same(t, newCfg, w.CurrentConfig())
}

func TestWorker_AdoptPendingConfigNoOpWhenNothingPublished(t *testing.T) {
	cfg := testConfig(t)
	w := New(0, nil, cfg, nil, 4)
	w.active = cfg

	w.adoptPendingConfig()

	require.Same(t, cfg, w.active)
}

func TestWorker_PortMACAndNATDelegateToActiveConfig(t *testing.T) {
	cfg := testConfig(t)
	w := New(0, nil, cfg, nil, 4)
	w.active = cfg

	require.Equal(t, cfg.Ports[1].MAC, w.PortMAC(1))
	require.Same(t, cfg.NAT, w.NAT())
}
