package taskctl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
	"github.com/robotalks/pt.go/pkg/pt"
)

type fakeCommand struct {
	msg   fx.Message
	reply fx.Message
}

func (c *fakeCommand) Msg() fx.Message { return c.msg }

func (c *fakeCommand) Done(msg fx.Message) error {
	c.reply = msg
	return nil
}

type fakeRegistrar struct {
	events []fx.Message
}

func (r *fakeRegistrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.events = append(r.events, msg)
	return nil
}

type testEnv struct {
	loop  *fx.Loop
	reg   *fakeRegistrar
	ticks int
}

func newTestEnv() *testEnv {
	env := &testEnv{loop: fx.NewLoop(), reg: &fakeRegistrar{}}
	env.loop.AddTask(fx.PrLvSense, "ticker", pt.New(pt.Loop(
		pt.Do(func() { env.ticks++ }),
		pt.Yield(),
	)))
	env.loop.AddTask(fx.PrLvSense, "once", pt.New(pt.Yield()))
	env.loop.Add(New(env.reg, env.loop.Tasks(fx.PrLvSense)))
	return env
}

func (e *testEnv) do(msg fx.Message) fx.Message {
	cmd := &fakeCommand{msg: msg}
	e.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	e.loop.RunIteration(context.Background())
	return cmd.reply
}

func TestListTasks(t *testing.T) {
	env := newTestEnv()
	reply := env.do(&msgs.TaskListQuery{})
	require.IsType(t, &msgs.TaskList{}, reply)
	list := reply.(*msgs.TaskList)
	require.Len(t, list.Tasks, 2)
	require.Equal(t, "once", list.Tasks[0].Name)
	require.True(t, list.Tasks[0].Running)
	require.Equal(t, "ticker", list.Tasks[1].Name)
	require.Equal(t, uint64(1), list.Tasks[1].Invocations)
}

func TestTerminatedEvent(t *testing.T) {
	env := newTestEnv()
	env.loop.RunIteration(context.Background())
	require.Empty(t, env.reg.events)
	env.loop.RunIteration(context.Background())
	require.Len(t, env.reg.events, 1)
	event := env.reg.events[0].(*msgs.TaskTerminated)
	require.Equal(t, "once", event.Task.Name)
	require.True(t, event.Task.Result)
	require.Equal(t, uint32(pt.Terminated), event.Task.State)
}

func TestStopAndRestart(t *testing.T) {
	env := newTestEnv()
	require.IsType(t, &msgs.CommandOK{}, env.do(&msgs.TaskControl{Name: "ticker", Action: msgs.TaskActionStop}))
	require.Equal(t, 1, env.ticks)

	env.loop.RunIteration(context.Background())
	require.Equal(t, 1, env.ticks)
	var names []string
	for _, ev := range env.reg.events {
		task := ev.(*msgs.TaskTerminated).Task
		names = append(names, task.Name)
		if task.Name == "ticker" {
			require.False(t, task.Result)
		}
	}
	require.ElementsMatch(t, []string{"ticker", "once"}, names)

	require.IsType(t, &msgs.CommandOK{}, env.do(&msgs.TaskControl{Name: "ticker", Action: msgs.TaskActionRestart}))
	env.loop.RunIteration(context.Background())
	require.Equal(t, 2, env.ticks)
}

func TestControlErrors(t *testing.T) {
	env := newTestEnv()
	reply := env.do(&msgs.TaskControl{Name: "nope", Action: msgs.TaskActionStop})
	require.IsType(t, &msgs.CommandErr{}, reply)
	require.Equal(t, `unknown task "nope"`, reply.(*msgs.CommandErr).Message)

	reply = env.do(&msgs.TaskControl{Name: "ticker"})
	require.IsType(t, &msgs.CommandErr{}, reply)

	reply = (&Controller{}).control(&msgs.TaskControl{Name: "ticker", Action: msgs.TaskActionStop})
	require.IsType(t, &msgs.CommandErr{}, reply)
}

func TestIgnoresOtherCommands(t *testing.T) {
	env := newTestEnv()
	require.Nil(t, env.do(&msgs.RotationQuery{}))
}
