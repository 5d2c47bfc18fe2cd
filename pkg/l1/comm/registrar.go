package comm

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
)

// Registrar is the controller side of a Pipe. Received commands and
// events are posted to the loop as messages, commands wrapped in
// l1.CommandMsg for replying.
type Registrar struct {
	pipe Pipe
}

// NewRegistrar creates a Registrar over rw.
func NewRegistrar(rw PacketReadWriter) *Registrar {
	r := &Registrar{}
	r.Init(rw)
	return r
}

// Init initializes the Registrar over rw.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(r.post)
}

func (r *Registrar) post(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	switch typed.Kind() {
	case msgs.TypeIDKindCommand:
		msg = &l1.CommandMsg{Command: &command{seq: typed.Sequence, msg: msg, pipe: &r.pipe}}
	case msgs.TypeIDKindEvent:
	default:
		return nil
	}
	loopCtl.PostMessage(msg)
	loopCtl.TriggerNext()
	return nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// Run receives messages until the connection fails or closes.
func (r *Registrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

// Close closes the connection.
func (r *Registrar) Close() error {
	return r.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

type command struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
}

func (c *command) Msg() fx.Message {
	return c.msg
}

// Done replies msg, or CommandOK if msg is nil.
func (c *command) Done(msg fx.Message) error {
	if msg == nil {
		msg = msgs.NewCommandOK()
	}
	return c.pipe.SendCommandMsg(msg, c.seq)
}

// RegistrarMux sends events through all Registrars, e.g. the registry
// and direct connections.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// SendEvent implements Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// Add adds registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// UnsupportedCommands replies commands no controller has taken.
type UnsupportedCommands struct{}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		mctx.MessageTaken()
		glog.V(2).Infof("l1: unsupported command %T", cmdMsg.Command.Msg())
		if err := cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)); err != nil {
			glog.Warningf("l1: reply failed: %v", err)
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
