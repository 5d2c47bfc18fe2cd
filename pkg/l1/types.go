// Package l1 defines the roles around an L1 controller: the controller
// registers itself and receives commands, L2 clients discover and
// connect to it.
package l1

import (
	"context"

	fx "github.com/robotalks/pt.go/pkg/framework"
)

// Registrar makes the controller reachable by L2. Received commands are
// posted to the loop as CommandMsg.
type Registrar interface {
	// SendEvent sends an event to connected L2 clients.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command waiting for its reply.
type Command interface {
	Msg() fx.Message
	// Done sends the reply.
	Done(fx.Message) error
}

// CommandMsg is the loop message carrying a Command.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef identifies an L1 controller.
type ControllerRef struct {
	// Type is the kind of controller, e.g. gyro.
	Type string `yaml:"type"`
	// ID is unique among controllers of the same type.
	ID string `yaml:"id"`
}

// Name returns <type>/<id>.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid checks both Type and ID are set.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta describes an L1 controller.
type ControllerMeta struct {
	Description string            `json:"description,omitempty" yaml:"description"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels"`
}

// ControllerInfo is what L2 knows about a controller.
type ControllerInfo struct {
	Ref  ControllerRef  `yaml:"ref"`
	Meta ControllerMeta `yaml:"meta"`
}

// Connector is used by L2 to find and connect to controllers.
type Connector interface {
	Discover(context.Context) ([]ControllerInfo, error)
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is an L2 connection to a controller.
type ControllerConn interface {
	// DoCommand sends a command, the reply arrives on the future.
	DoCommand(fx.Message) CommandFuture
}

// Result is the reply to a command. Err is set for CommandErr replies.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture delivers the Result of a command once.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Wait waits for the result of f.
func Wait(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case res := <-f.ResultChan():
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do sends a command over conn and waits for the reply.
func Do(ctx context.Context, conn ControllerConn, msg fx.Message) (fx.Message, error) {
	return Wait(ctx, conn.DoCommand(msg))
}
