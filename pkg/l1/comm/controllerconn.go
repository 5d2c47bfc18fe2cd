package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = 1 * time.Second

// ControllerConn is the L2 side of a Pipe implementing l1.ControllerConn.
// Replies are matched to commands by sequence, events are posted to the
// loop.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	seq     uint32
	pending pendingCommands
	lock    sync.Mutex
}

// pendingCommands are commands waiting for replies, oldest first.
type pendingCommands struct {
	order list.List
	bySeq map[uint32]*commandFuture
}

func (p *pendingCommands) add(f *commandFuture) {
	if p.bySeq == nil {
		p.bySeq = make(map[uint32]*commandFuture)
	}
	f.elem = p.order.PushBack(f)
	p.bySeq[f.seq] = f
}

func (p *pendingCommands) take(seq uint32) *commandFuture {
	f := p.bySeq[seq]
	if f != nil {
		p.order.Remove(f.elem)
		delete(p.bySeq, seq)
	}
	return f
}

// expired removes the commands expired at now.
func (p *pendingCommands) expired(now time.Time) (futures []*commandFuture) {
	for p.order.Len() > 0 {
		f := p.order.Front().Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		futures = append(futures, p.take(f.seq))
	}
	return
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan l1.Result
}

func (c *commandFuture) ResultChan() <-chan l1.Result {
	return c.result
}

func (c *commandFuture) complete(r l1.Result) {
	c.result <- r
	close(c.result)
}

// NewControllerConn creates a ControllerConn over rw.
func NewControllerConn(rw PacketReadWriter) *ControllerConn {
	c := &ControllerConn{}
	c.Init(rw)
	return c
}

// Init initializes ControllerConn over rw.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.complete(l1.Result{Err: err})
		return f
	}
	c.pending.add(f)
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.pending.order.Len()
}

// Close closes the connection.
func (c *ControllerConn) Close() error {
	return c.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	c.lock.Lock()
	f := c.pending.take(typed.Sequence)
	c.lock.Unlock()
	if f == nil {
		glog.V(2).Infof("l1: late or unknown reply #%d", typed.Sequence)
		return nil
	}
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.complete(result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	c.lock.Lock()
	futures := c.pending.expired(time.Now())
	c.lock.Unlock()
	for _, f := range futures {
		f.complete(l1.Result{Err: context.DeadlineExceeded})
	}
	return nil
}
