package gyro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pt.go/pkg/l0/comm"
	"github.com/robotalks/pt.go/pkg/pt"
	"github.com/robotalks/pt.go/pkg/timeout"
)

type fakeTransport struct {
	requests []byte
	reply    comm.Result
}

func (t *fakeTransport) Request(code byte, data []byte) Pending {
	t.requests = append(t.requests, code)
	return &simPending{result: t.reply}
}

func runToEnd(t *testing.T, r pt.Runner) int {
	for n := 1; n < 100; n++ {
		if !r.Run() {
			return n
		}
	}
	t.Fatal("not terminated")
	return 0
}

func newTestGyro() (*Gyroscope, *Simulator, *timeout.ManualClock) {
	clock := timeout.NewManualClock(time.Unix(1000, 0))
	sim := NewSimulator(clock)
	sim.Period = 0
	return New(sim, clock), sim, clock
}

func TestConfigure(t *testing.T) {
	g, _, _ := newTestGyro()
	op := g.Configure(Dps500)
	require.False(t, op.IsRunning())
	op.Restart()
	require.Equal(t, 1, runToEnd(t, op))
	require.True(t, op.Result())
	require.NoError(t, op.Err)
	require.Equal(t, Dps500, g.Scale())
}

func TestReadRotation(t *testing.T) {
	testCases := []struct {
		name      string
		scale     Scale
		amplitude float64
		expect    float32
	}{
		{"250dps", Dps250, 100, 99.995},
		{"2000dps", Dps2000, -1000, -999.95},
		{"clamped", Dps250, 1000, 286.7113},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, sim, _ := newTestGyro()
			sim.Amplitude = tc.amplitude
			var ok bool
			th := pt.New(
				pt.CallResult(g.Configure(tc.scale), &ok),
				pt.If(func() bool { return ok }, pt.Call(g.ReadRotation())),
			)
			runToEnd(t, th)
			require.True(t, ok)
			require.True(t, g.ReadRotation().Result())
			require.InDelta(t, tc.expect, g.Data().Z, 0.05)
			require.Zero(t, g.Data().X)
			require.Zero(t, g.Data().Y)
		})
	}
}

func TestWaitForReply(t *testing.T) {
	g, sim, _ := newTestGyro()
	sim.Latency = 3
	op := g.ReadRotation()
	op.Restart()
	require.Equal(t, 4, runToEnd(t, op))
	require.True(t, op.Result())
}

func TestTimeout(t *testing.T) {
	g, sim, clock := newTestGyro()
	sim.Fail = LostReply
	g.Timeout = 20 * time.Millisecond
	op := g.Configure(Dps250)
	op.Restart()
	require.True(t, op.Run())
	clock.Advance(10 * time.Millisecond)
	require.True(t, op.Run())
	clock.Advance(10 * time.Millisecond)
	require.False(t, op.Run())
	require.False(t, op.Result())
	require.Equal(t, ErrTimeout, op.Err)
}

func TestCommandError(t *testing.T) {
	g, sim, _ := newTestGyro()
	sim.Fail = 0x10
	op := g.ReadRotation()
	op.Restart()
	runToEnd(t, op)
	require.False(t, op.Result())
	require.Equal(t, &comm.CommandError{Code: 0x10}, op.Err)

	sim.Fail = 0
	op.Restart()
	runToEnd(t, op)
	require.True(t, op.Result())
	require.NoError(t, op.Err)
}

func TestShortReply(t *testing.T) {
	tr := &fakeTransport{reply: comm.Result{Code: CodeReadRotation, Data: []byte{1, 2}}}
	g := New(tr, nil)
	op := g.ReadRotation()
	op.Restart()
	runToEnd(t, op)
	require.False(t, op.Result())
	require.Equal(t, ErrShortReply, op.Err)
	require.Equal(t, []byte{CodeReadRotation}, tr.requests)
}

func TestInvalidScale(t *testing.T) {
	g, _, _ := newTestGyro()
	op := g.Configure(Scale(7))
	op.Restart()
	runToEnd(t, op)
	require.False(t, op.Result())
	require.Equal(t, Dps250, g.Scale())
}

func TestScale(t *testing.T) {
	for s := Dps250; s.IsValid(); s++ {
		parsed, err := ParseScale(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := ParseScale("100dps")
	require.Error(t, err)
	require.Equal(t, "Scale(9)", Scale(9).String())
	require.Zero(t, Scale(9).Sensitivity())
	require.Equal(t, float32(0.070), Dps2000.Sensitivity())
}

func TestAxisEncoding(t *testing.T) {
	buf := make([]byte, 2)
	for _, v := range []int16{0, 1, -1, 32767, -32768, 1234} {
		encodeAxis(buf, v)
		require.Equal(t, v, decodeAxis(buf))
	}
	encodeAxis(buf, 0x1234)
	require.Equal(t, []byte{0x34, 0x12}, buf)
	require.Equal(t, int16(-2), decodeAxis([]byte{0xfe, 0xff}))
}
