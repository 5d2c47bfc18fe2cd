package gyro

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/pt.go/pkg/l0/comm"
	"github.com/robotalks/pt.go/pkg/pt"
	"github.com/robotalks/pt.go/pkg/timeout"
)

// DefaultTimeout is the default time to wait for a reply.
const DefaultTimeout = 50 * time.Millisecond

// Gyroscope is the device driver.
type Gyroscope struct {
	Transport Transport
	// Timeout bounds the wait for a reply, DefaultTimeout if zero.
	Timeout time.Duration

	scale     Scale
	reqScale  Scale
	data      Data
	configure Operation
	read      Operation
}

// Operation is a nested protothread performing one request. The result is
// true if the request succeeded.
type Operation struct {
	pt.Thread
	// Err is why the last run failed.
	Err error

	gyro    *Gyroscope
	code    byte
	request func() []byte
	reply   func([]byte) error

	pending Pending
	result  comm.Result
	replied bool
	timer   timeout.Timeout
}

// New creates a Gyroscope over transport, the timeouts use clock.
func New(transport Transport, clock timeout.Clock) *Gyroscope {
	g := &Gyroscope{Transport: transport}
	g.configure.init(g, clock, CodeConfigure, g.configureRequest, g.configureReply)
	g.read.init(g, clock, CodeReadRotation, nil, g.rotationReply)
	return g
}

// Scale returns the configured scale.
func (g *Gyroscope) Scale() Scale {
	return g.scale
}

// Data returns the last reading.
func (g *Gyroscope) Data() Data {
	return g.data
}

// Configure returns the operation setting the measurement range.
// The operation is shared: only one configuration can be in progress.
func (g *Gyroscope) Configure(scale Scale) *Operation {
	g.reqScale = scale
	return &g.configure
}

// ReadRotation returns the operation reading the rotation into Data.
func (g *Gyroscope) ReadRotation() *Operation {
	return &g.read
}

func (g *Gyroscope) timeout() time.Duration {
	if g.Timeout > 0 {
		return g.Timeout
	}
	return DefaultTimeout
}

func (g *Gyroscope) configureRequest() []byte {
	return []byte{byte(g.reqScale)}
}

func (g *Gyroscope) configureReply([]byte) error {
	g.scale = g.reqScale
	glog.V(1).Infof("gyro: configured %s", g.scale)
	return nil
}

func (g *Gyroscope) rotationReply(data []byte) error {
	if len(data) < 6 {
		return ErrShortReply
	}
	sensitivity := g.scale.Sensitivity()
	g.data = Data{
		X: float32(decodeAxis(data[0:])) * sensitivity,
		Y: float32(decodeAxis(data[2:])) * sensitivity,
		Z: float32(decodeAxis(data[4:])) * sensitivity,
	}
	return nil
}

func (o *Operation) init(g *Gyroscope, clock timeout.Clock, code byte, request func() []byte, reply func([]byte) error) {
	o.gyro, o.code, o.request, o.reply = g, code, request, reply
	o.timer.Clock = clock
	o.Init(
		pt.Do(o.send),
		pt.WaitUntil(o.poll),
		pt.If(func() bool { return !o.replied },
			pt.Do(func() { o.Err = ErrTimeout }),
		).ElseIf(func() bool { return o.result.Err != nil },
			pt.Do(func() { o.Err = o.result.Err }),
		).Else(
			pt.Do(func() { o.Err = o.reply(o.result.Data) }),
		),
		pt.If(func() bool { return o.Err != nil },
			pt.Do(func() { glog.Warningf("gyro: command %02x failed: %v", o.code, o.Err) }),
			pt.ExitWith(false),
		),
	)
	// not started until called.
	o.Stop()
}

func (o *Operation) send() {
	var data []byte
	if o.request != nil {
		data = o.request()
	}
	o.Err, o.replied = nil, false
	o.pending = o.gyro.Transport.Request(o.code, data)
	o.timer.Restart(o.gyro.timeout())
}

func (o *Operation) poll() bool {
	o.result, o.replied = o.pending.Poll()
	return o.replied || o.timer.IsExpired()
}
