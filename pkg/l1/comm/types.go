package comm

import "io"

// PacketReader reads whole packets.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes whole packets.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is a packet connection between L1 and L2, e.g. a
// pair of MQTT topics, a TCP stream or a websocket.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// PacketConn is a PacketReadWriter which can be closed.
type PacketConn interface {
	PacketReadWriter
	io.Closer
}
