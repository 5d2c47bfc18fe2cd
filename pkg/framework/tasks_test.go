package framework

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pt.go/pkg/pt"
)

type countdown struct {
	pt.Thread
	name  string
	left  int
	trace *[]string
}

func newCountdown(name string, n int, trace *[]string) *countdown {
	c := &countdown{name: name, trace: trace}
	c.Init(
		pt.Do(func() { c.left = n }),
		pt.While(func() bool { return c.left > 0 },
			pt.Do(func() {
				*c.trace = append(*c.trace, c.name)
				c.left--
			}),
			pt.Yield(),
		),
	)
	return c
}

func TestTasksRunInOrder(t *testing.T) {
	var trace []string
	l := NewLoop()
	l.AddTask(PrLvControl, "a", newCountdown("a", 2, &trace)).
		AddTask(PrLvControl, "b", newCountdown("b", 2, &trace)).
		AddTask(PrLvSense, "s", newCountdown("s", 1, &trace))
	ctx := context.Background()
	l.RunIteration(ctx)
	require.Equal(t, []string{"s", "a", "b"}, trace)
	l.RunIteration(ctx)
	require.Equal(t, []string{"s", "a", "b", "a", "b"}, trace)
}

func TestTasksTermination(t *testing.T) {
	var trace []string
	var terminated []TaskStatus
	l := NewLoop()
	l.AddTask(PrLvControl, "c", newCountdown("c", 2, &trace))
	l.Tasks(PrLvControl).Subscribe(TaskTerminatedFunc(func(cc ControlContext, st TaskStatus) {
		terminated = append(terminated, st)
	}))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		l.RunIteration(ctx)
	}
	require.Equal(t, []string{"c", "c"}, trace)
	require.Len(t, terminated, 1)
	require.Equal(t, "c", terminated[0].Name)
	require.False(t, terminated[0].Running)
	require.True(t, terminated[0].Result)
	require.Equal(t, pt.Terminated, terminated[0].State)
	require.Equal(t, uint64(3), terminated[0].Invocations)

	st, err := l.Tasks(PrLvControl).Status("c")
	require.NoError(t, err)
	require.Equal(t, uint64(3), st.Invocations)
}

func TestTasksStopAndRestart(t *testing.T) {
	var trace []string
	var terminated []TaskStatus
	tasks := NewTasks(PrLvControl).
		Add("c", newCountdown("c", 10, &trace)).
		Subscribe(TaskTerminatedFunc(func(cc ControlContext, st TaskStatus) {
			terminated = append(terminated, st)
		}))
	l := NewLoop().Add(tasks)
	ctx := context.Background()

	l.RunIteration(ctx)
	l.RunIteration(ctx)
	require.NoError(t, tasks.Stop("c"))
	l.RunIteration(ctx)
	require.Len(t, terminated, 1)
	require.False(t, terminated[0].Result)
	require.Equal(t, []string{"c", "c"}, trace)

	l.RunIteration(ctx)
	require.Equal(t, []string{"c", "c"}, trace)

	require.NoError(t, tasks.Restart("c"))
	l.RunIteration(ctx)
	require.Equal(t, []string{"c", "c", "c"}, trace)
	list := tasks.List()
	require.Len(t, list, 1)
	require.True(t, list[0].Running)
	require.Equal(t, uint64(3), list[0].Invocations)
}

func TestTasksUnknown(t *testing.T) {
	tasks := NewTasks(PrLvControl)
	err := tasks.Stop("nope")
	require.Error(t, err)
	require.IsType(t, &ErrUnknownTask{}, err)
	require.Equal(t, `unknown task "nope"`, err.Error())
	require.Error(t, tasks.Restart("nope"))
	_, err = tasks.Status("nope")
	require.Error(t, err)
}

func TestTasksDuplicate(t *testing.T) {
	var trace []string
	tasks := NewTasks(PrLvControl).Add("a", newCountdown("a", 1, &trace))
	require.Panics(t, func() { tasks.Add("a", newCountdown("a", 1, &trace)) })
}

func TestTasksListSorted(t *testing.T) {
	var trace []string
	tasks := &Tasks{}
	tasks.Add("z", newCountdown("z", 1, &trace)).Add("m", newCountdown("m", 1, &trace))
	list := tasks.List()
	require.Equal(t, "m", list[0].Name)
	require.Equal(t, "z", list[1].Name)
	require.Equal(t, pt.State(0), list[0].State)
}
