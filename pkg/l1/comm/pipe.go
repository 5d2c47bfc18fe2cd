package comm

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
)

var (
	// ErrNotCommand indicates a message sent as a command is not one.
	ErrNotCommand = errors.New("message is not a command")
	// ErrNotEvent indicates a message sent as an event is not one.
	ErrNotEvent = errors.New("message is not an event")
)

// Pipe exchanges Typed messages over a PacketReadWriter.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock  sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewPipe creates a Pipe over rw.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends a command with the sequence matching its reply.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		return ErrNotCommand
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		return ErrNotEvent
	}
	return p.SendTyped(typed)
}

// SendTyped sends an encoded message.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	glog.V(4).Infof("l1: send %08x #%d", typed.TypeId, typed.Sequence)
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run receives messages until reading fails. Packets which can't be
// decoded are skipped; undecodable commands are answered with CommandErr.
func (p *Pipe) Run(ctx context.Context) error {
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		typed, err := msgs.DecodeTyped(pkt)
		if err != nil {
			glog.Warningf("l1: bad packet: %v", err)
			continue
		}
		glog.V(4).Infof("l1: recv %08x #%d", typed.TypeId, typed.Sequence)
		msg, err := typed.Decode()
		if err != nil {
			if typed.IsCommand() {
				if err = p.SendTyped(replyErr(err, typed.Sequence)); err != nil {
					return err
				}
			}
			continue
		}
		if p.Handler == nil {
			continue
		}
		if err = p.Handler.HandleTypedMsg(ctx, msg, typed); err != nil {
			return err
		}
	}
}

func replyErr(err error, seq uint32) *msgs.Typed {
	typed, e := msgs.TypedFrom(msgs.NewCommandErr(err))
	if e != nil {
		panic(e)
	}
	typed.Sequence = seq
	return typed
}

// Close closes the ReadWriter if it's an io.Closer. Only the first call
// closes it.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		if closer, ok := p.ReadWriter.(io.Closer); ok {
			p.closeErr = closer.Close()
		}
	})
	return p.closeErr
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	switch rw := p.ReadWriter.(type) {
	case fx.LoopAdder:
		loop.Add(rw)
	case fx.Runnable:
		loop.AddRunnable(rw)
	}
	loop.AddRunnable(p)
}
