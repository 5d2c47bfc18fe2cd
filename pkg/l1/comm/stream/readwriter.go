package stream

import (
	"encoding/binary"
	"io"
	"sync"
)

const headerSize = 4

// ReadWriter frames packets on a byte stream. Each packet is prefixed by
// its length as a 4-byte little-endian integer.
type ReadWriter struct {
	io.ReadWriter

	header [headerSize]byte
	wlock  sync.Mutex
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{ReadWriter: s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	if _, err := io.ReadFull(p.ReadWriter, p.header[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(p.header[:])
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p.ReadWriter, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter. The length prefix and payload are
// written with a single Write so concurrent writers never interleave.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return ErrPacketTooLarge
	}
	buf := make([]byte, headerSize+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[headerSize:], pkt)
	p.wlock.Lock()
	defer p.wlock.Unlock()
	_, err := p.Write(buf)
	return err
}

// Close implements io.Closer if the underlying stream is closable.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
