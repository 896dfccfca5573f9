// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package header

import "encoding/binary"

const (
	ARPOpRequest uint16 = 1
	ARPOpReply   uint16 = 2
)

// ARP is a typed view over an Ethernet/IPv4 ARP message (HTYPE=1,
// PTYPE=0x0800, HLEN=6, PLEN=4 assumed, as is universal on Ethernet).
type ARP struct {
	b []byte
}

func ParseARP(b []byte) ARP { return ARP{b} }

func (a ARP) HType() uint16    { return binary.BigEndian.Uint16(a.b[0:2]) }
func (a ARP) PType() uint16    { return binary.BigEndian.Uint16(a.b[2:4]) }
func (a ARP) HLen() uint8      { return a.b[4] }
func (a ARP) PLen() uint8      { return a.b[5] }
func (a ARP) Opcode() uint16   { return binary.BigEndian.Uint16(a.b[6:8]) }
func (a ARP) SenderMAC() []byte { return a.b[8:14] }
func (a ARP) SenderIP() uint32 { return binary.BigEndian.Uint32(a.b[14:18]) }
func (a ARP) TargetMAC() []byte { return a.b[18:24] }
func (a ARP) TargetIP() uint32 { return binary.BigEndian.Uint32(a.b[24:28]) }

func (a ARP) SetOpcode(op uint16)     { binary.BigEndian.PutUint16(a.b[6:8], op) }
func (a ARP) SetSenderMAC(mac []byte) { copy(a.b[8:14], mac) }
func (a ARP) SetSenderIP(ip uint32)   { binary.BigEndian.PutUint32(a.b[14:18], ip) }
func (a ARP) SetTargetMAC(mac []byte) { copy(a.b[18:24], mac) }
func (a ARP) SetTargetIP(ip uint32)   { binary.BigEndian.PutUint32(a.b[24:28], ip) }

// ToReply turns a request in place into a reply: swap sender/target,
// substituting replyMAC for the new sender MAC (the NAT's own MAC on
// the receiving port), per spec.md §4.G ARP handler.
func (a ARP) ToReply(replyMAC []byte) {
	senderIP, targetIP := a.SenderIP(), a.TargetIP()
	var senderMAC [6]byte
	copy(senderMAC[:], a.SenderMAC())

	a.SetOpcode(ARPOpReply)
	a.SetTargetMAC(senderMAC[:])
	a.SetTargetIP(senderIP)
	a.SetSenderMAC(replyMAC)
	a.SetSenderIP(targetIP)
}
