package rotation

import (
	"context"
	"log"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l0/comm"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
	"github.com/robotalks/pt.go/pkg/sensor/gyro"
	"github.com/robotalks/pt.go/pkg/timeout"
)

// LogLedRing shows the LEDs in the log.
type LogLedRing struct{}

// Write implements LedRing.
func (LogLedRing) Write(mask uint32) {
	glog.V(1).Infof("LEDS %032b", mask)
}

// Controller runs the Reader on an L1 controller. Changes are sent to
// L2 as Rotation events.
type Controller struct {
	Reader    *Reader
	Registrar l1.Registrar

	client *comm.Client
}

// NewController creates a Controller over the transport.
func (c *Config) NewController(reg l1.Registrar, transport gyro.Transport, clock timeout.Clock) *Controller {
	g := gyro.New(transport, clock)
	g.Timeout = c.Timeout
	ctl := &Controller{
		Reader:    NewReader(*c, g, LogLedRing{}, clock),
		Registrar: reg,
	}
	ctl.Reader.Listener = ctl
	return ctl
}

// NewDeviceController creates a Controller talking to the L0 firmware on
// Device, or a simulated gyroscope if Device is empty.
func (c *Config) NewDeviceController(reg l1.Registrar) (*Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Device == "" {
		glog.Info("using simulated gyroscope")
		return c.NewController(reg, gyro.NewSimulator(nil), nil), nil
	}
	f, err := os.OpenFile(c.Device, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	client := comm.NewClient(comm.NewFIFO(f))
	ctl := c.NewController(reg, &gyro.ClientTransport{Client: client}, nil)
	ctl.client = client
	return ctl, nil
}

// MustNewDeviceController creates the Controller and fails on error.
func (c *Config) MustNewDeviceController(reg l1.Registrar) *Controller {
	ctl, err := c.NewDeviceController(reg)
	if err != nil {
		log.Fatalln(err)
	}
	return ctl
}

// RotationChanged implements ChangeListener.
func (c *Controller) RotationChanged(rot *msgs.Rotation) {
	if c.Registrar == nil {
		return
	}
	if err := c.Registrar.SendEvent(context.Background(), rot); err != nil {
		glog.Warningf("rotation: send event failed: %v", err)
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.Add(c.Reader)
	if c.client != nil {
		l.AddRunnable(fx.NamedRun("l0-client", c.client), fx.NamedRun("l0-watch", fx.RunnableFunc(c.watchDevice)))
	}
}

// watchDevice consumes states and events from the L0 client.
func (c *Controller) watchDevice(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state := <-c.client.StateChan():
			glog.Infof("L0 state: ready=%v %+v", state.IsReady(), c.client.FIFO().Stats())
		case pkt := <-c.client.EventChan():
			glog.V(2).Infof("L0 event %02x: %x", pkt.Code, pkt.Data)
		}
	}
}
