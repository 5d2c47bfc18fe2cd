package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/pt.go/pkg/l1/comm"
)

// DefaultPath is the HTTP path serving websocket connections.
const DefaultPath = "/l1"

// ErrClosed indicates the listener is closed.
var ErrClosed = errors.New("listener closed")

// Listener accepts websocket connections.
type Listener struct {
	server *http.Server
	ln     net.Listener
	connCh chan *serverConn
	closed chan struct{}
	once   sync.Once
}

// serverConn keeps the websocket handler alive until the connection is
// closed, as the handler returning closes the connection.
type serverConn struct {
	*ReadWriter
	done chan struct{}
	once sync.Once
}

func (c *serverConn) Close() error {
	err := c.ReadWriter.Close()
	c.once.Do(func() { close(c.done) })
	return err
}

// Listen listens on the TCP address and serves websocket on path.
func Listen(addr, path string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = DefaultPath
	}
	l := &Listener{
		ln:     ln,
		connCh: make(chan *serverConn),
		closed: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(l.handle))
	l.server = &http.Server{Handler: mux}
	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			glog.Errorf("websocket server error: %v", err)
		}
	}()
	return l, nil
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept implements comm.ConnListener.
func (l *Listener) Accept() (comm.PacketConn, error) {
	select {
	case conn := <-l.connCh:
		return conn, nil
	case <-l.closed:
		return nil, ErrClosed
	}
}

// Close implements io.Closer.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.closed)
		err = l.server.Close()
	})
	return err
}

func (l *Listener) handle(ws *websocket.Conn) {
	conn := &serverConn{ReadWriter: New(ws), done: make(chan struct{})}
	select {
	case l.connCh <- conn:
	case <-l.closed:
		return
	}
	select {
	case <-conn.done:
	case <-l.closed:
	}
}

// Dialer dials a websocket URL, e.g. ws://host:port/l1.
func Dialer(url string) comm.Dialer {
	return comm.DialFunc(func(ctx context.Context) (comm.PacketReadWriter, error) {
		config, err := websocket.NewConfig(url, "http://localhost/")
		if err != nil {
			return nil, err
		}
		config.Dialer = &net.Dialer{}
		if deadline, ok := ctx.Deadline(); ok {
			config.Dialer.Deadline = deadline
		}
		ws, err := websocket.DialConfig(config)
		if err != nil {
			return nil, err
		}
		return New(ws), nil
	})
}
