// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package nattable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	addrA = 0x0a000005 // 10.0.0.5
	addrB = 0xd42f0005 // 212.47.0.5
)

func TestInsertPairIsSymmetric(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.InsertPair(addrA, addrB))

	got, ok := tbl.Lookup(addrA)
	require.True(t, ok)
	require.Equal(t, uint32(addrB), got)

	got, ok = tbl.Lookup(addrB)
	require.True(t, ok)
	require.Equal(t, uint32(addrA), got)

	require.Equal(t, 1, tbl.Pairs())
}

func TestLookupMissReturnsFalse(t *testing.T) {
	tbl := New()
	_, ok := tbl.Lookup(0x09090909)
	require.False(t, ok)
}

func TestZeroAddressRejected(t *testing.T) {
	tbl := New()
	require.Error(t, tbl.InsertPair(0, addrB))
	require.Error(t, tbl.InsertPair(addrA, 0))

	_, ok := tbl.Lookup(0)
	require.False(t, ok)
}

func TestResetClearsAllEntries(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.InsertPair(addrA, addrB))
	tbl.Reset()

	_, ok := tbl.Lookup(addrA)
	require.False(t, ok)
	require.Equal(t, 0, tbl.Pairs())
}

func TestIterateVisitsEachDirectionOnce(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.InsertPair(addrA, addrB))

	seen := map[[2]uint32]bool{}
	count := 0
	tbl.Iterate(func(from, to uint32, _ uint64) {
		seen[[2]uint32{from, to}] = true
		count++
	})

	require.Equal(t, 2, count)
	require.True(t, seen[[2]uint32{addrA, addrB}])
	require.True(t, seen[[2]uint32{addrB, addrA}])
}

func TestByteCounterAccumulates(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.InsertPair(addrA, addrB))
	tbl.AddByteCount(addrA, 100)
	tbl.AddByteCount(addrA, 50)

	found := false
	tbl.Iterate(func(from, _ uint32, bytes uint64) {
		if from == addrA {
			found = true
			require.Equal(t, uint64(150), bytes)
		}
	})
	require.True(t, found)
}
