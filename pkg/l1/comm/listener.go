package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	fx "github.com/robotalks/pt.go/pkg/framework"
)

// ConnListener accepts packet connections from L2.
type ConnListener interface {
	Accept() (PacketConn, error)
	io.Closer
}

// Listener is a Registrar accepting direct connections from L2 without
// a registry. Commands from all connections are posted to the loop, and
// events are sent to every connection.
type Listener struct {
	Listener ConnListener

	lock     sync.Mutex
	sessions map[string]*Registrar
}

// NewListener creates a Listener.
func NewListener(ln ConnListener) *Listener {
	return &Listener{Listener: ln}
}

// SendEvent implements Registrar.
func (l *Listener) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	l.lock.Lock()
	regs := make([]*Registrar, 0, len(l.sessions))
	for _, reg := range l.sessions {
		regs = append(regs, reg)
	}
	l.lock.Unlock()
	for _, reg := range regs {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// Sessions returns the number of connections.
func (l *Listener) Sessions() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.sessions)
}

// AddToLoop implements LoopAdder.
func (l *Listener) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

// Run implements Runnable.
func (l *Listener) Run(ctx context.Context) error {
	defer l.closeAll()
	return fx.RunWithContextCloser(ctx, l.Listener, func() error {
		for {
			rw, err := l.Listener.Accept()
			if err != nil {
				return err
			}
			l.serve(ctx, rw)
		}
	})
}

func (l *Listener) serve(ctx context.Context, rw PacketConn) {
	id := uuid.New().String()
	reg := NewRegistrar(rw)
	l.lock.Lock()
	if l.sessions == nil {
		l.sessions = make(map[string]*Registrar)
	}
	l.sessions[id] = reg
	l.lock.Unlock()
	glog.Infof("session %s connected", id)
	go func() {
		err := reg.Run(ctx)
		l.lock.Lock()
		delete(l.sessions, id)
		l.lock.Unlock()
		glog.Infof("session %s disconnected: %v", id, err)
	}()
}

func (l *Listener) closeAll() {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, reg := range l.sessions {
		reg.Close()
	}
}
