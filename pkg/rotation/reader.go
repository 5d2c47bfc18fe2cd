// Package rotation shows the rotation measured by the gyroscope on a ring
// of LEDs.
package rotation

import (
	"math"

	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/filter"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
	"github.com/robotalks/pt.go/pkg/pt"
	"github.com/robotalks/pt.go/pkg/sensor/gyro"
	"github.com/robotalks/pt.go/pkg/timeout"
)

// TaskName is the name of the Reader task in the loop.
const TaskName = "rotation"

// LedRing lights LEDs, bit n of the mask is LED n.
type LedRing interface {
	Write(mask uint32)
}

// LedRingFunc is the func form of LedRing.
type LedRingFunc func(uint32)

// Write implements LedRing.
func (f LedRingFunc) Write(mask uint32) { f(mask) }

// ChangeListener is notified when the lit LEDs change.
type ChangeListener interface {
	RotationChanged(*msgs.Rotation)
}

// Reader is the task configuring the gyroscope and then repeatedly
// reading the rotation. The moving average of Z is shown as a bar.
type Reader struct {
	pt.Thread

	Leds     LedRing
	Listener ChangeListener

	config  Config
	scale   gyro.Scale
	gyro    *gyro.Gyroscope
	average *filter.MovingAverage[float32]
	timer   timeout.Timeout

	configured bool
	readOK     bool
	current    msgs.Rotation
	samples    uint64
}

// NewReader creates the task. The config must be valid.
func NewReader(conf Config, g *gyro.Gyroscope, leds LedRing, clock timeout.Clock) *Reader {
	scale, err := gyro.ParseScale(conf.Scale)
	if err != nil {
		panic(err)
	}
	r := &Reader{
		Leds:    leds,
		config:  conf,
		scale:   scale,
		gyro:    g,
		average: filter.NewMovingAverage[float32](conf.Window),
	}
	r.timer.Clock = clock
	configure := g.Configure(scale)
	r.Init(
		pt.Do(r.reset),
		pt.CallResult(configure, &r.configured),
		pt.If(func() bool { return !r.configured },
			pt.Do(func() { glog.Errorf("rotation: configure gyro failed: %v", configure.Err) }),
			pt.ExitWith(false),
		),
		pt.Loop(
			pt.CallResult(g.ReadRotation(), &r.readOK),
			pt.If(func() bool { return r.readOK }, pt.Do(r.update)),
			pt.Do(func() { r.timer.Restart(r.config.Period) }),
			pt.WaitUntil(r.timer.IsExpired),
		),
	)
	return r
}

// Current returns the last reading.
func (r *Reader) Current() msgs.Rotation {
	return r.current
}

// Samples returns the number of readings since restarted.
func (r *Reader) Samples() uint64 {
	return r.samples
}

// LedMask computes the LEDs lit for the averaged rotation.
func (r *Reader) LedMask(value float32) uint32 {
	n := int(math.Abs(float64(value / r.config.FullScale * float32(r.config.Leds))))
	if n >= 32 {
		return math.MaxUint32
	}
	return uint32(1)<<uint(n) - 1
}

func (r *Reader) reset() {
	r.average.Reset()
	r.current = msgs.Rotation{}
	r.samples = 0
	r.timer.Stop()
}

func (r *Reader) update() {
	data := r.gyro.Data()
	r.average.Update(data.Z)
	r.samples++
	avg := r.average.Value()
	leds := r.LedMask(avg)
	changed := leds != r.current.Leds || r.samples == 1
	r.current = msgs.Rotation{X: data.X, Y: data.Y, Z: data.Z, AverageZ: avg, Leds: leds}
	if !changed {
		return
	}
	if r.Leds != nil {
		r.Leds.Write(leds)
	}
	glog.V(3).Infof("rotation: avg %.2f dps, leds %05b", avg, leds)
	if r.Listener != nil {
		rot := r.current
		r.Listener.RotationChanged(&rot)
	}
}

// Control implements Controller and answers RotationQuery.
func (r *Reader) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		if _, ok := cmdMsg.Command.Msg().(*msgs.RotationQuery); !ok {
			return
		}
		mctx.MessageTaken()
		rot := r.current
		reply := &msgs.RotationStatus{Scale: r.gyro.Scale().String()}
		if r.samples > 0 {
			reply.Rotation = &rot
		}
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Warningf("rotation: reply failed: %v", err)
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (r *Reader) AddToLoop(l *fx.Loop) {
	l.AddTask(fx.PrLvSense, TaskName, r)
	l.AddController(fx.PrLvControl, r)
}
