package rotation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
	"github.com/robotalks/pt.go/pkg/pt"
	"github.com/robotalks/pt.go/pkg/sensor/gyro"
	"github.com/robotalks/pt.go/pkg/timeout"
)

type readerTestEnv struct {
	clock  *timeout.ManualClock
	sim    *gyro.Simulator
	reader *Reader
	writes []uint32
	events []*msgs.Rotation
}

func (e *readerTestEnv) RotationChanged(rot *msgs.Rotation) {
	e.events = append(e.events, rot)
}

func newReaderTestEnv() *readerTestEnv {
	env := &readerTestEnv{clock: timeout.NewManualClock(time.Unix(0, 0))}
	env.sim = gyro.NewSimulator(env.clock)
	env.sim.Period = 0
	env.sim.Amplitude = 100
	g := gyro.New(env.sim, env.clock)
	env.reader = NewReader(DefaultConfig(), g, LedRingFunc(func(mask uint32) {
		env.writes = append(env.writes, mask)
	}), env.clock)
	env.reader.Listener = env
	return env
}

func (e *readerTestEnv) tick() bool {
	e.clock.Advance(DefaultConfig().Period)
	return e.reader.Run()
}

func TestReaderLeds(t *testing.T) {
	env := newReaderTestEnv()
	require.True(t, env.reader.Run())
	require.Equal(t, uint64(1), env.reader.Samples())
	for i := 1; i < 25; i++ {
		require.True(t, env.tick())
	}
	require.Equal(t, uint64(25), env.reader.Samples())
	require.Equal(t, []uint32{0, 1, 3}, env.writes)
	require.Len(t, env.events, 3)
	require.Equal(t, uint32(3), env.events[2].Leds)
	require.InDelta(t, 100, env.reader.Current().AverageZ, 0.01)
	require.InDelta(t, 100, env.reader.Current().Z, 0.01)
}

func TestReaderWaitsForPeriod(t *testing.T) {
	env := newReaderTestEnv()
	env.reader.Run()
	state := env.reader.State()
	for i := 0; i < 3; i++ {
		require.True(t, env.reader.Run())
	}
	require.Equal(t, state, env.reader.State())
	require.Equal(t, uint64(1), env.reader.Samples())
	env.clock.Advance(time.Millisecond)
	env.reader.Run()
	require.Equal(t, uint64(1), env.reader.Samples())
	env.clock.Advance(4 * time.Millisecond)
	env.reader.Run()
	require.Equal(t, uint64(2), env.reader.Samples())
}

func TestReaderConfigureFailure(t *testing.T) {
	env := newReaderTestEnv()
	env.sim.Fail = 0x20
	require.False(t, env.reader.Run())
	require.False(t, env.reader.IsRunning())
	require.False(t, env.reader.Result())
	require.Empty(t, env.writes)
	require.Empty(t, env.events)
}

func TestReaderSkipsFailedReading(t *testing.T) {
	env := newReaderTestEnv()
	env.reader.Run()
	env.sim.Fail = 0x20
	require.True(t, env.tick())
	require.Equal(t, uint64(1), env.reader.Samples())
	env.sim.Fail = 0
	require.True(t, env.tick())
	require.Equal(t, uint64(2), env.reader.Samples())
}

func TestReaderRestart(t *testing.T) {
	env := newReaderTestEnv()
	env.reader.Run()
	env.tick()
	require.Equal(t, uint64(2), env.reader.Samples())
	env.reader.Restart()
	env.reader.Run()
	require.Equal(t, uint64(1), env.reader.Samples())
	require.InDelta(t, 4, env.reader.Current().AverageZ, 0.01)
}

type fakeCommand struct {
	msg   fx.Message
	reply fx.Message
}

func (c *fakeCommand) Msg() fx.Message { return c.msg }

func (c *fakeCommand) Done(msg fx.Message) error {
	c.reply = msg
	return nil
}

func TestReaderInLoop(t *testing.T) {
	env := newReaderTestEnv()
	l := fx.NewLoop().Add(env.reader)
	query := &fakeCommand{msg: &msgs.RotationQuery{}}
	other := &fakeCommand{msg: &msgs.TaskListQuery{}}
	l.PostMessage(&l1.CommandMsg{Command: query})
	l.PostMessage(&l1.CommandMsg{Command: other})
	l.RunIteration(context.Background())

	require.Nil(t, other.reply)
	require.IsType(t, &msgs.RotationStatus{}, query.reply)
	status := query.reply.(*msgs.RotationStatus)
	require.Equal(t, "250dps", status.Scale)
	require.NotNil(t, status.Rotation)
	require.InDelta(t, 4, status.Rotation.AverageZ, 0.01)

	st, err := l.Tasks(fx.PrLvSense).Status(TaskName)
	require.NoError(t, err)
	require.True(t, st.Running)
	require.NotEqual(t, pt.Terminated, st.State)
}

func TestLedMask(t *testing.T) {
	env := newReaderTestEnv()
	testCases := []struct {
		value float32
		mask  uint32
	}{
		{0, 0},
		{39, 0},
		{40, 1},
		{-40, 1},
		{100, 3},
		{-200, 0x1f},
		{250, 0x3f},
		{1e6, 0xffffffff},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.mask, env.reader.LedMask(tc.value), "value %v", tc.value)
	}
}

func TestParseConfig(t *testing.T) {
	conf, err := ParseConfig([]byte("scale: 500dps\nperiod: 10ms\nwindow: 5\n"))
	require.NoError(t, err)
	require.Equal(t, "500dps", conf.Scale)
	require.Equal(t, 10*time.Millisecond, conf.Period)
	require.Equal(t, 5, conf.Window)
	require.Equal(t, float32(200), conf.FullScale)
	require.Equal(t, 5, conf.Leds)

	_, err = ParseConfig([]byte("scale: 100dps\n"))
	require.Error(t, err)
	_, err = ParseConfig([]byte("window: 0\n"))
	require.Error(t, err)
	_, err = ParseConfig([]byte("leds: [1"))
	require.Error(t, err)
	_, err = ParseConfig([]byte("period: 0\n"))
	require.Error(t, err)
	_, err = ParseConfig([]byte("period: -5ms\n"))
	require.Error(t, err)
}
