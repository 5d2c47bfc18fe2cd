// Package taskctl exposes the tasks driven by the loop to L2: listing,
// restarting and stopping tasks, and reporting their termination.
package taskctl

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
)

// Controller answers task commands for a set of Tasks.
type Controller struct {
	Tasks     []*fx.Tasks
	Registrar l1.Registrar
}

// New creates a Controller.
func New(reg l1.Registrar, tasks ...*fx.Tasks) *Controller {
	return &Controller{Tasks: tasks, Registrar: reg}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	for _, tasks := range c.Tasks {
		tasks.Subscribe(c)
	}
	l.AddController(fx.PrLvControl, c)
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		var reply fx.Message
		switch m := cmdMsg.Command.Msg().(type) {
		case *msgs.TaskListQuery:
			reply = c.list()
		case *msgs.TaskControl:
			reply = c.control(m)
		default:
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Warningf("taskctl: reply failed: %v", err)
		}
	}))
	return nil
}

// TaskTerminated implements TaskListener.
func (c *Controller) TaskTerminated(cc fx.ControlContext, status fx.TaskStatus) {
	if c.Registrar == nil {
		return
	}
	ctx := context.Background()
	if cc != nil {
		ctx = cc.Context()
	}
	event := &msgs.TaskTerminated{Task: msgs.NewTaskInfo(status)}
	if err := c.Registrar.SendEvent(ctx, event); err != nil {
		glog.Warningf("taskctl: send event failed: %v", err)
	}
}

func (c *Controller) list() *msgs.TaskList {
	reply := &msgs.TaskList{}
	for _, tasks := range c.Tasks {
		for _, st := range tasks.List() {
			reply.Tasks = append(reply.Tasks, msgs.NewTaskInfo(st))
		}
	}
	return reply
}

func (c *Controller) control(m *msgs.TaskControl) fx.Message {
	var err error = &fx.ErrUnknownTask{Name: m.Name}
	for _, tasks := range c.Tasks {
		switch m.Action {
		case msgs.TaskActionRestart:
			err = tasks.Restart(m.Name)
		case msgs.TaskActionStop:
			err = tasks.Stop(m.Name)
		default:
			return msgs.NewCommandErr(fmt.Errorf("invalid action %d", m.Action))
		}
		if _, unknown := err.(*fx.ErrUnknownTask); !unknown {
			break
		}
	}
	if err != nil {
		return msgs.NewCommandErr(err)
	}
	glog.Infof("taskctl: %s %s", m.Action, m.Name)
	return msgs.NewCommandOK()
}
