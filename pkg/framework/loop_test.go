package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pt.go/pkg/pt"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func TestLoopPriorityAndHooks(t *testing.T) {
	var trace []string
	record := func(name string) Controller {
		return ControlFunc(func(cc ControlContext) error {
			trace = append(trace, name)
			return nil
		})
	}
	l := NewLoop()
	l.AddController(PrLvAcuate, record("acuate"))
	l.AddController(PrLvSense, record("sense"))
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		trace = append(trace, "control")
		cc.PostRun(record("post"))
		return errors.New("ignored")
	}))
	l.PreRunAt(PrLvControl, record("pre"))

	l.RunIteration(context.Background())
	require.Equal(t, []string{"sense", "pre", "control", "post", "acuate"}, trace)

	trace = nil
	l.RunIteration(context.Background())
	require.Equal(t, []string{"sense", "control", "post", "acuate"}, trace)
}

func TestLoopMessages(t *testing.T) {
	var taken, seen []int
	l := NewLoop()
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if m, ok := mctx.CurrentMessage().(*testMsg); ok && m.val%2 == 0 {
				mctx.MessageTaken()
				taken = append(taken, m.val)
			}
		}))
		return nil
	}))
	l.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			seen = append(seen, mctx.CurrentMessage().(*testMsg).val)
		}))
		return nil
	}))
	for i := 1; i <= 4; i++ {
		l.PostMessage(&testMsg{val: i})
	}
	l.RunIteration(context.Background())
	require.Equal(t, []int{2, 4}, taken)
	require.Equal(t, []int{1, 3}, seen)

	// untaken messages are not carried to the next iteration.
	seen = nil
	l.RunIteration(context.Background())
	require.Empty(t, seen)
}

func TestLoopIteration(t *testing.T) {
	var seqs []uint64
	l := NewLoop()
	l.AddController(PrLvTop, ControlFunc(func(cc ControlContext) error {
		seqs = append(seqs, cc.Iteration())
		require.False(t, cc.Time().IsZero())
		return nil
	}))
	l.RunIteration(context.Background())
	l.RunIteration(context.Background())
	require.Equal(t, []uint64{1, 2}, seqs)
}

func TestLoopRunsTasksUntilCanceled(t *testing.T) {
	var trace []string
	doneCh := make(chan TaskStatus, 1)
	l := NewLoop()
	l.Interval = time.Millisecond
	l.AddTask(PrLvControl, "c", newCountdown("c", 3, &trace))
	l.Tasks(PrLvControl).Subscribe(TaskTerminatedFunc(func(cc ControlContext, st TaskStatus) {
		doneCh <- st
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	select {
	case st := <-doneCh:
		require.Equal(t, "c", st.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("task not terminated")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, []string{"c", "c", "c"}, trace)
}

func TestLoopTriggerNext(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour
	wokeCh := make(chan struct{}, 4)
	th := pt.New(pt.Loop(pt.Do(func() { wokeCh <- struct{}{} }), pt.Yield()))
	l.AddTask(PrLvControl, "wake", th)
	l.TriggerNext() // no-op before Run

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.wakeUpCh = make(chan struct{}, 1)
	go l.Run(ctx)
	l.TriggerNext()
	select {
	case <-wokeCh:
	case <-time.After(2 * time.Second):
		t.Fatal("iteration not triggered")
	}
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil, errors.New("e1"))
	require.Equal(t, "e1", errs.Aggregate().Error())
	errs.Add(errors.New("e2"))
	require.Equal(t, "2 errors: e1; e2", errs.Aggregate().Error())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopCh := make(chan struct{})
	cancel()
	err := RunWithContextCancel(ctx, func() { close(stopCh) }, func() error {
		<-stopCh
		return nil
	})
	require.Equal(t, context.Canceled, err)
}

type countingCloser struct {
	closed int
	stopCh chan struct{}
}

func (c *countingCloser) Close() error {
	c.closed++
	if c.stopCh != nil {
		close(c.stopCh)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	var closer countingCloser
	err := RunWithContextCloser(context.Background(), &closer, func() error {
		return errors.New("done")
	})
	require.EqualError(t, err, "done")
	require.Equal(t, 1, closer.closed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	closer = countingCloser{stopCh: make(chan struct{})}
	err = RunWithContextCloser(ctx, &closer, func() error {
		<-closer.stopCh
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closer.closed)
}

func TestRunnerWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	r.Go(
		NamedRun("canceled", RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunnableFunc(func(ctx context.Context) error {
			return errors.New("failed")
		}),
	)
	cancel()
	require.EqualError(t, r.Wait(), "failed")
}
