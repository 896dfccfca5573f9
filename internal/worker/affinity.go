// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package worker

import (
	"runtime"

	"golang.org/x/sys/unix"

	natgwerrors "github.com/natgw/natgw/internal/errors"
)

// PinToCPU locks the calling goroutine to its current OS thread and
// restricts that thread's scheduling affinity to a single CPU, per
// spec.md §4.H's "each Worker is pinned to one core": the pipeline never
// benefits from being migrated mid-burst, and pinning removes a source
// of jitter in the RFC 1242-style latency the daemon is judged on.
//
// Callers must invoke PinToCPU from the goroutine that will run the
// pipeline, before calling Run — runtime.LockOSThread is per-goroutine,
// not per-process.
func PinToCPU(cpu int) error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return natgwerrors.Wrapf(err, natgwerrors.KindUnavailable, "pin to cpu %d", cpu)
	}
	return nil
}
