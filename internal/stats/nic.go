// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package stats

import (
	"github.com/safchain/ethtool"

	natgwerrors "github.com/natgw/natgw/internal/errors"
)

// NICReader reads driver-reported NIC counters directly from the I/O
// layer, per spec.md §4.K's "NIC counters come from the I/O layer
// directly" — per-port driver counters, as opposed to the per-core
// Block counters Aggregate covers. natgwd does not connect it to the
// admin commands.
type NICReader struct {
	e *ethtool.Ethtool
}

// NewNICReader opens the ethtool ioctl handle shared across every port
// query this process makes.
func NewNICReader() (*NICReader, error) {
	e, err := ethtool.NewEthtool()
	if err != nil {
		return nil, natgwerrors.Wrap(err, natgwerrors.KindUnavailable, "open ethtool handle")
	}
	return &NICReader{e: e}, nil
}

// Close releases the ethtool handle.
func (r *NICReader) Close() error {
	r.e.Close()
	return nil
}

// Stats returns the driver's named statistics for one interface.
func (r *NICReader) Stats(iface string) (map[string]uint64, error) {
	s, err := r.e.Stats(iface)
	if err != nil {
		return nil, natgwerrors.Wrapf(err, natgwerrors.KindUnavailable, "read ethtool stats for %q", iface)
	}
	return s, nil
}

// XStats mirrors Stats for the `xstats` admin command, which spec.md
// §4.L distinguishes only by operator expectation ("extended" output) —
// the underlying ioctl is the same NIC counter set for this driver
// surface.
func (r *NICReader) XStats(iface string) (map[string]uint64, error) {
	return r.Stats(iface)
}
