// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package iopkt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool_GetPutRoundTrip(t *testing.T) {
	p := NewPool(2)

	b1 := p.Get()
	b2 := p.Get()
	require.NotNil(t, b1)
	require.NotNil(t, b2)
	require.Nil(t, p.Get(), "pool of 2 must be exhausted after two Gets")

	Release(b1)
	require.NotNil(t, p.Get(), "released buffer must be reusable")
}

func TestBuffer_ResetClearsOffloadAndRxPort(t *testing.T) {
	p := NewPool(1)
	buf := p.Get()
	buf.Offload = OffloadIPv4Checksum
	buf.RxPort = 3
	buf.SetLength(100)
	Release(buf)

	reused := p.Get()
	require.Same(t, buf, reused)
	require.Equal(t, OffloadFlags(0), reused.Offload)
	require.Equal(t, 0, reused.RxPort)
	require.Equal(t, 0, reused.Len())
}

func TestBuffer_SetLengthClampsToRange(t *testing.T) {
	p := NewPool(1)
	buf := p.Get()

	buf.SetLength(-5)
	require.Equal(t, 0, buf.Len())

	buf.SetLength(MaxFrameLen + 1000)
	require.Equal(t, MaxFrameLen, buf.Len())
}

func TestRelease_NilBufferIsNoop(t *testing.T) {
	require.NotPanics(t, func() { Release(nil) })
}
