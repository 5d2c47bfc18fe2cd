package l1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/pt.go/pkg/framework"
)

type testMsg struct{ name string }

func (m *testMsg) NewMessage() fx.Message { return &testMsg{} }

type future chan Result

func (f future) ResultChan() <-chan Result { return f }

type echoConn struct {
	err error
}

func (c *echoConn) DoCommand(msg fx.Message) CommandFuture {
	f := make(future, 1)
	if c.err != nil {
		f <- Result{Err: c.err}
	} else if msg != nil {
		f <- Result{Msg: msg}
	}
	return f
}

func TestDo(t *testing.T) {
	msg := &testMsg{name: "ping"}
	reply, err := Do(context.Background(), &echoConn{}, msg)
	require.NoError(t, err)
	require.Equal(t, msg, reply)

	failure := errors.New("failure")
	_, err = Do(context.Background(), &echoConn{err: failure}, msg)
	require.Equal(t, failure, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Do(ctx, &echoConn{}, nil)
	require.Equal(t, context.Canceled, err)
}

func TestControllerRef(t *testing.T) {
	ref := ControllerRef{Type: "gyro", ID: "1"}
	require.Equal(t, "gyro/1", ref.Name())
	require.True(t, ref.IsValid())
	require.False(t, ControllerRef{Type: "gyro"}.IsValid())
}
