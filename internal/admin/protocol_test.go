// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package admin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponse_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, Response{Cmd: CmdStats, Status: StatusOK, Payload: []byte("hello")}))

	var hdr [4]byte
	_, err := buf.Read(hdr[:])
	require.NoError(t, err)
	require.Equal(t, byte(CmdStats), hdr[0])
	require.Equal(t, byte(StatusOK), hdr[1])
	require.Equal(t, "hello", buf.String())
}

func TestWriteResponse_RejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResponse(&buf, Response{Cmd: CmdStats, Status: StatusOK, Payload: make([]byte, maxPayload+1)})
	require.Error(t, err)
}

func TestReadRequest_DecodesFixedOneByteCommand(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(CmdVersion))

	req, err := ReadRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, CmdVersion, req.Cmd)
}

func TestWriteRequest_ReadResponse_ClientRoundTrip(t *testing.T) {
	var reqBuf bytes.Buffer
	require.NoError(t, WriteRequest(&reqBuf, Request{Cmd: CmdReload}))
	req, err := ReadRequest(&reqBuf)
	require.NoError(t, err)
	require.Equal(t, CmdReload, req.Cmd)

	var respBuf bytes.Buffer
	require.NoError(t, WriteResponse(&respBuf, Response{Cmd: CmdReload, Status: StatusError, Payload: []byte("nope")}))
	resp, err := ReadResponse(&respBuf)
	require.NoError(t, err)
	require.Equal(t, StatusError, resp.Status)
	require.Equal(t, "nope", string(resp.Payload))
}

func TestReadResponse_DecodesPayload(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(CmdVersion))
	buf.WriteByte(byte(StatusOK))
	buf.Write([]byte{0, 3})
	buf.WriteString("abc")

	resp, err := ReadResponse(&buf)
	require.NoError(t, err)
	require.Equal(t, CmdVersion, resp.Cmd)
	require.Equal(t, "abc", string(resp.Payload))
}
