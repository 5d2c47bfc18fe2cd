package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"
)

// Result is the reply to a Command.
type Result struct {
	Err  error
	Code byte
	Data []byte
}

// Command is a request waiting for its reply.
type Command struct {
	requestSeq PacketSeq
	resultCh   chan Result
	next       *Command
}

// RequestSeq returns the sequence of the request packet.
func (c *Command) RequestSeq() PacketSeq {
	return c.requestSeq
}

// ResultChan returns the chan receiving the result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// Poll retrieves the result without blocking, for protothreads waiting
// for the reply in a WaitUntil.
func (c *Command) Poll() (Result, bool) {
	select {
	case r := <-c.resultCh:
		return r, true
	default:
		return Result{}, false
	}
}

// commandQueue holds the commands sent, in order.
type commandQueue struct {
	head, tail *Command
}

func (q *commandQueue) push(cmd *Command) {
	if q.head == nil {
		q.head = cmd
	} else {
		q.tail.next = cmd
	}
	q.tail = cmd
}

// take removes the command sent with seq and all commands sent before
// it, which are returned as skipped.
func (q *commandQueue) take(seq PacketSeq) (cmd *Command, skipped []*Command) {
	for c := q.head; c != nil; c = c.next {
		if c.requestSeq == seq {
			cmd = c
			break
		}
	}
	if cmd == nil {
		return nil, nil
	}
	for q.head != cmd {
		skipped = append(skipped, q.head)
		q.head = q.head.next
	}
	if q.head = cmd.next; q.head == nil {
		q.tail = nil
	}
	cmd.next = nil
	return
}

// Client sends commands over a FIFO and matches replies.
type Client struct {
	fifo    *FIFO
	eventCh chan *Packet
	stateCh chan SyncState

	cmds     commandQueue
	cmdsLock sync.Mutex
}

// NewClient creates a client handling packets of fifo. Both StateChan
// and EventChan must be consumed.
func NewClient(fifo *FIFO) *Client {
	c := &Client{
		fifo:    fifo,
		eventCh: make(chan *Packet, 1),
		stateCh: make(chan SyncState, 1),
	}
	c.fifo.Handler = c
	c.fifo.Notifier = StateChangedFunc(func(ctx context.Context, state SyncState) {
		c.stateCh <- state
	})
	return c
}

// FIFO returns the wrapped FIFO.
func (c *Client) FIFO() *FIFO {
	return c.fifo
}

// StateChan receives link state changes.
func (c *Client) StateChan() <-chan SyncState {
	return c.stateCh
}

// EventChan receives events from the firmware.
func (c *Client) EventChan() <-chan *Packet {
	return c.eventCh
}

// DoWith sends pkt, the result is delivered to ch.
func (c *Client) DoWith(pkt *Packet, ch chan Result) *Command {
	cmd := &Command{resultCh: ch}
	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	err := c.fifo.Send(pkt)
	cmd.requestSeq = pkt.Seq
	if err != nil {
		cmd.resultCh <- Result{Err: err}
		return cmd
	}
	c.cmds.push(cmd)
	return cmd
}

// Do sends pkt.
func (c *Client) Do(pkt *Packet) *Command {
	return c.DoWith(pkt, make(chan Result, 1))
}

// Request sends a command with code and data.
func (c *Client) Request(code byte, data []byte) *Command {
	return c.Do(&Packet{Code: code, Data: data})
}

// HandlePacket implements PacketHandler.
func (c *Client) HandlePacket(ctx context.Context, pkt *Packet) {
	if pkt.IsEvent() {
		c.eventCh <- pkt
		return
	}
	if len(pkt.Data) == 0 {
		glog.V(3).Infof("l0: reply %02x without request seq", pkt.Code)
		return
	}
	seq := PacketSeq(pkt.Data[0])
	if !seq.IsValid() {
		glog.V(3).Infof("l0: reply %02x with invalid seq %02x", pkt.Code, pkt.Data[0])
		return
	}
	c.cmdsLock.Lock()
	cmd, skipped := c.cmds.take(seq)
	c.cmdsLock.Unlock()
	if cmd == nil {
		glog.V(3).Infof("l0: reply for unknown seq %d", seq)
		return
	}
	for _, s := range skipped {
		s.resultCh <- Result{Err: ErrNoReply}
	}
	code := pkt.Code &^ (FlagEvent | FlagError)
	if pkt.Code&FlagError != 0 {
		cmd.resultCh <- Result{Err: &CommandError{Code: code}}
	} else {
		cmd.resultCh <- Result{Code: code, Data: pkt.Data[1:]}
	}
}

// Run implements Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.fifo.Run(ctx)
}
