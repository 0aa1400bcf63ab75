// Package netsession implements the server side of the session/network
// model (§4.11, C12): player lifecycle, fix-counter position
// reconciliation, and wire packet framing. Grounded on the teacher's
// internal/memory bus read/write framing (fixed-width header + payload,
// decoded with encoding/binary), generalized from a byte-addressable bus
// to a length-prefixed network packet.
package netsession

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PacketType enumerates the core packet types from §6. Server-bound and
// client-bound types share one numbering space; a packet's direction is
// implied by which side sends it.
type PacketType uint8

const (
	PktHello PacketType = iota + 1
	PktHello2
	PktOK
	PktChat
	PktPlayerInfo
	PktCoords
	PktAckShake
	PktAckPlayerFix
	PktPing
	PktLogin
	PktCommand2
	PktFinaleRequest
	PktGoodbye

	PsvHandshake
	PsvSync
	PsvMaterialArchive
	PsvMobjTypeIDList
	PsvMobjStateIDList
	PsvPlayerFix
	PsvPlayerExit
	PsvConsoleText
	PsvServerClose
)

// Packet is one framed network message: {from:u8, type:u8, length:u16,
// payload} per §6.
type Packet struct {
	From    uint8
	Type    PacketType
	Payload []byte
}

// Encode writes p in wire format: from, type, a little-endian uint16
// length, then payload bytes.
func Encode(p Packet) []byte {
	buf := make([]byte, 4+len(p.Payload))
	buf[0] = p.From
	buf[1] = byte(p.Type)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(p.Payload)))
	copy(buf[4:], p.Payload)
	return buf
}

// Decode reads one framed packet from the front of data, returning it and
// the number of bytes consumed.
func Decode(data []byte) (Packet, int, error) {
	if len(data) < 4 {
		return Packet{}, 0, fmt.Errorf("netsession: short packet header (%d bytes)", len(data))
	}
	length := int(binary.LittleEndian.Uint16(data[2:4]))
	total := 4 + length
	if len(data) < total {
		return Packet{}, 0, fmt.Errorf("netsession: truncated packet, want %d have %d", total, len(data))
	}
	p := Packet{From: data[0], Type: PacketType(data[1]), Payload: append([]byte(nil), data[4:total]...)}
	return p, total, nil
}

// Decoder buffers received bytes and yields complete packets in receive
// order, matching §5's "all packets are processed in receive order within
// a tick" ordering guarantee.
type Decoder struct {
	buf bytes.Buffer
}

// Feed appends newly received bytes.
func (d *Decoder) Feed(data []byte) { d.buf.Write(data) }

// Next pops the next complete packet, if the buffer holds one.
func (d *Decoder) Next() (Packet, bool) {
	p, n, err := Decode(d.buf.Bytes())
	if err != nil {
		return Packet{}, false
	}
	d.buf.Next(n)
	return p, true
}
