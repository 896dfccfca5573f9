// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

// Package admin implements spec.md §4.L's control surface: the primary
// fixed-header binary protocol on a loopback TCP socket (a one-byte
// command request, a `{type, status, data_size}` reply per spec.md §6),
// plus a secondary HTTP surface (metrics, live stats over a websocket)
// and a tertiary SSH-reachable TUI dashboard, all read-only except for
// `reload`, `reset`, and `exit`.
package admin

import (
	"encoding/binary"
	"io"

	natgwerrors "github.com/natgw/natgw/internal/errors"
)

// Command is the primary protocol's 8-bit command byte.
type Command uint8

const (
	CmdStatus Command = iota + 1
	CmdVersion
	CmdReload
	CmdStats
	CmdXStats
	CmdReset
	CmdExit
)

// Status is the primary protocol's 8-bit response status byte.
type Status uint8

const (
	StatusOK Status = iota
	StatusError
)

// maxPayload is the largest reply payload the u16 data_size field can
// describe; WriteResponse rejects anything larger.
const maxPayload = 1<<16 - 1

// Request is one decoded primary-protocol request: spec.md §6 specifies
// the request as `{ type: u8 }`, fixed-size per command — none of this
// protocol's commands (status/version/reload/stats/xstats/reset/exit)
// carry arguments, so every request is exactly the one command byte.
type Request struct {
	Cmd Command
}

// ReadRequest decodes one Request from r.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, err
	}
	return Request{Cmd: Command(hdr[0])}, nil
}

// Response is one encoded primary-protocol reply: spec.md §6's
// `{ type: u8, status: u8, data_size: u16 big-endian }` header followed
// by data_size bytes of payload.
type Response struct {
	Cmd     Command
	Status  Status
	Payload []byte
}

// WriteRequest encodes req to w, for the client side of the primary
// protocol (natgwctl).
func WriteRequest(w io.Writer, req Request) error {
	_, err := w.Write([]byte{byte(req.Cmd)})
	return err
}

// ReadResponse decodes one Response from r, for the client side of the
// primary protocol.
func ReadResponse(r io.Reader) (Response, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Response{}, err
	}
	cmd := Command(hdr[0])
	status := Status(hdr[1])
	n := binary.BigEndian.Uint16(hdr[2:])
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Response{}, err
		}
	}
	return Response{Cmd: cmd, Status: status, Payload: payload}, nil
}

// WriteResponse encodes resp to w.
func WriteResponse(w io.Writer, resp Response) error {
	if len(resp.Payload) > maxPayload {
		return natgwerrors.Errorf(natgwerrors.KindValidation, "admin: response payload %d exceeds limit", len(resp.Payload))
	}
	var hdr [4]byte
	hdr[0] = byte(resp.Cmd)
	hdr[1] = byte(resp.Status)
	binary.BigEndian.PutUint16(hdr[2:], uint16(len(resp.Payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(resp.Payload) == 0 {
		return nil
	}
	_, err := w.Write(resp.Payload)
	return err
}
