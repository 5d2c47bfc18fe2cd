package stream

import (
	"context"
	"errors"
	"net"

	"github.com/robotalks/pt.go/pkg/l1/comm"
)

// MaxPacketSize limits the size of a received packet.
const MaxPacketSize = 1 << 20

// ErrPacketTooLarge indicates the length prefix exceeds MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// Listener accepts TCP connections as packet streams.
type Listener struct {
	net.Listener
}

// Listen listens on the TCP address.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{Listener: ln}, nil
}

// Accept implements comm.ConnListener.
func (l *Listener) Accept() (comm.PacketConn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Dialer dials a TCP address.
func Dialer(addr string) comm.Dialer {
	return comm.DialFunc(func(ctx context.Context) (comm.PacketReadWriter, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		return New(conn), nil
	})
}
