package comm

import (
	"context"

	"github.com/robotalks/pt.go/pkg/l1"
)

// Dialer opens a packet connection to a controller.
type Dialer interface {
	Dial(context.Context) (PacketReadWriter, error)
}

// DialFunc is the func form of Dialer.
type DialFunc func(context.Context) (PacketReadWriter, error)

// Dial implements Dialer.
func (f DialFunc) Dial(ctx context.Context) (PacketReadWriter, error) {
	return f(ctx)
}

// DirectConnector connects to a single controller listening for L2
// connections.
type DirectConnector struct {
	Dialer Dialer
	// Info is reported by Discover.
	Info l1.ControllerInfo
}

// Discover implements Connector.
func (c *DirectConnector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{c.Info}, nil
}

// Connect implements Connector. The ref is ignored as the peer is
// determined by the Dialer.
func (c *DirectConnector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	rw, err := c.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return NewControllerConn(rw), nil
}
