package msgs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/pt"
)

func TestTypedRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		msg     SerializableMessage
		command bool
	}{
		{"command err", NewCommandErr(errors.New("failed")), true},
		{"task list", &TaskList{Tasks: []*TaskInfo{
			{Name: "reader", Running: true, State: 3, Invocations: 12},
			{Name: "blink", State: uint32(pt.Terminated), Result: true},
		}}, true},
		{"task control", &TaskControl{Name: "reader", Action: TaskActionStop}, true},
		{"task terminated", &TaskTerminated{Task: &TaskInfo{Name: "reader"}}, false},
		{"rotation", &Rotation{Z: -12.5, AverageZ: 3.25, Leds: 7}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typed, err := TypedFrom(tc.msg)
			require.NoError(t, err)
			require.Equal(t, tc.command, typed.IsCommand())
			require.Equal(t, !tc.command, typed.IsEvent())
			typed.Sequence = 42

			data, err := typed.Encode()
			require.NoError(t, err)
			decoded, err := DecodeTyped(data)
			require.NoError(t, err)
			require.Equal(t, uint32(42), decoded.Sequence)
			require.Equal(t, tc.msg.TypeID(), decoded.TypeId)

			msg, err := decoded.Decode()
			require.NoError(t, err)
			require.Equal(t, tc.msg, msg)
		})
	}
}

func TestEmptyMessages(t *testing.T) {
	for _, m := range []SerializableMessage{&CommandOK{}, &TaskListQuery{}, &RotationQuery{}} {
		typed, err := TypedFrom(m)
		require.NoError(t, err)
		require.Empty(t, typed.Message)
		msg, err := typed.Decode()
		require.NoError(t, err)
		require.IsType(t, m, msg)
	}
}

type plainMsg struct{}

func (m *plainMsg) NewMessage() fx.Message { return &plainMsg{} }

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(&plainMsg{})
	require.Equal(t, ErrNotSerializable, err)

	typed := &Typed{TypeId: GroupCustom | 0x1234}
	_, err = typed.Decode()
	require.Equal(t, &ErrUnknownType{TypeID: GroupCustom | 0x1234}, err)
	require.Equal(t, "unknown type: 7f001234", err.Error())
}

func TestTypeIDs(t *testing.T) {
	for id, m := range MessageTypes {
		require.Equal(t, id, m.TypeID())
	}
	require.Equal(t, TypeIDKindEvent, TaskTerminatedTypeID&TypeIDMaskKind)
	require.Equal(t, TypeIDKindEvent, RotationTypeID&TypeIDMaskKind)
	require.NotZero(t, TaskListTypeID&TypeIDMaskReply)
	require.Panics(t, func() { RegisterType(&CommandOK{}) })
}

func TestTaskInfo(t *testing.T) {
	info := NewTaskInfo(fx.TaskStatus{Name: "a", State: pt.Terminated, Result: true, Invocations: 5})
	require.Equal(t, &TaskInfo{Name: "a", State: 0xffff, Result: true, Invocations: 5}, info)
	require.Equal(t, "restart", TaskActionRestart.String())
	require.Equal(t, "failed", NewCommandErrFromMsg("failed").Error())
}
