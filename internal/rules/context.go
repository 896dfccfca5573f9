// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package rules

import (
	"net"

	"github.com/natgw/natgw/internal/header"
	"github.com/natgw/natgw/internal/iopkt"
	"github.com/natgw/natgw/internal/nattable"
	"github.com/natgw/natgw/internal/stats"
)

// Packet is the unit of work the executor and every action/condition
// operate on: the borrowed I/O buffer plus its already-parsed header
// view. Parsing happens once, in the L2/L3 handler, before the rule tree
// is ever entered.
type Packet struct {
	Buf   *iopkt.Buffer
	Frame *header.Frame

	// RxPort is the port this packet arrived on.
	RxPort int
}

// Context is everything an action/condition needs from its owning
// worker, kept as a narrow interface so this package never imports the
// worker or config packages (which import rules.Node): spec.md §9's
// "eliminate per-core globals" note, applied as an explicit dependency
// rather than a package-level variable.
type Context interface {
	NAT() *nattable.Table
	Stats() *stats.Block

	// PortMAC returns the configured MAC address of the given output
	// port, used by action_out to set the Ethernet source.
	PortMAC(port int) net.HardwareAddr

	// Enqueue hands buf to the named output port's TX batch. Ownership
	// of buf transfers to the I/O layer.
	Enqueue(port int, buf *iopkt.Buffer)

	// Release returns buf to its pool without transmitting it.
	Release(buf *iopkt.Buffer)

	// Logf emits a control-path log line; only action_print calls this,
	// and only at a rate the rule author controls.
	Logf(format string, args ...any)
}
