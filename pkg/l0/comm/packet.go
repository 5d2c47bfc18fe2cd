package comm

import (
	"fmt"
	"io"
	"time"
)

const (
	// FlagEvent marks a packet as an event sent by the firmware.
	FlagEvent byte = 0x80
	// FlagError marks a reply as failed.
	FlagError byte = 0x01
	// CodeMask selects the code bits, including FlagEvent.
	CodeMask byte = 0x8f
	// MaxDataLen is the longest data a packet carries.
	MaxDataLen = 0x7f

	lenMask   byte = 0x70
	lenShift       = 4
	lenFollow      = 7
	seqLimit  byte = 0xf0
)

// PacketSeq is a packet sequence number, valid from 1 to 0xef.
type PacketSeq byte

// NewPacketSeq picks a random starting sequence.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next returns the sequence after s, wrapping to 1.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= seqLimit {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks s is in range.
func (s PacketSeq) IsValid() bool {
	return s > 0 && byte(s) < seqLimit
}

// Packet is a parsed or outgoing packet.
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

// IsEvent indicates the packet is an event rather than a reply.
func (p *Packet) IsEvent() bool {
	return p.Code&FlagEvent != 0
}

// Validate checks the packet can be encoded.
func (p *Packet) Validate() error {
	if len(p.Data) > MaxDataLen {
		return ErrDataTooLong
	}
	return nil
}

func (p *Packet) String() string {
	return fmt.Sprintf("#%d %02x %x", p.Seq, p.Code, p.Data)
}

// header encodes seq, code and length.
func (p *Packet) header() []byte {
	l := byte(len(p.Data))
	code := p.Code & CodeMask
	if l < lenFollow {
		return []byte{byte(p.Seq), code | l<<lenShift}
	}
	return []byte{byte(p.Seq), code | lenMask, l}
}

// Bytes encodes the packet.
func (p *Packet) Bytes() []byte {
	return append(p.header(), p.Data...)
}

// WriteTo implements io.WriterTo.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.header())
	if err == nil && len(p.Data) > 0 {
		var m int
		m, err = w.Write(p.Data)
		n += m
	}
	return int64(n), err
}
