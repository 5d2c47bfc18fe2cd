package gyro

import (
	"math"
	"sync"
	"time"

	"github.com/robotalks/pt.go/pkg/l0/comm"
	"github.com/robotalks/pt.go/pkg/timeout"
)

// Simulator is a Transport replying like the device. The rotation around
// Z swings as a sine wave, X and Y stay zero.
type Simulator struct {
	Clock timeout.Clock
	// Amplitude of the rotation in degrees per second.
	Amplitude float64
	// Period of the sine wave.
	Period time.Duration
	// Latency is the number of polls before a reply is available.
	Latency int
	// Fail makes all commands fail with the error code.
	Fail byte

	lock  sync.Mutex
	start time.Time
	scale Scale
}

type simPending struct {
	polls  int
	result comm.Result
}

func (p *simPending) Poll() (comm.Result, bool) {
	if p.polls > 0 {
		p.polls--
		return comm.Result{}, false
	}
	return p.result, true
}

type lostPending struct{}

func (lostPending) Poll() (comm.Result, bool) {
	return comm.Result{}, false
}

// LostReply is the error code which makes a Simulator never reply.
const LostReply byte = 0xfe

// NewSimulator creates a Simulator.
func NewSimulator(clock timeout.Clock) *Simulator {
	return &Simulator{
		Clock:     clock,
		Amplitude: 180,
		Period:    4 * time.Second,
	}
}

func (s *Simulator) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// Rotation returns the simulated rotation around Z at the moment.
func (s *Simulator) Rotation() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.rotation()
}

func (s *Simulator) rotation() float64 {
	now := s.now()
	if s.start.IsZero() {
		s.start = now
	}
	if s.Period <= 0 {
		return s.Amplitude
	}
	phase := float64(now.Sub(s.start)) / float64(s.Period)
	return s.Amplitude * math.Sin(2*math.Pi*phase)
}

// Request implements Transport.
func (s *Simulator) Request(code byte, data []byte) Pending {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail == LostReply {
		return lostPending{}
	}
	p := &simPending{polls: s.Latency}
	if s.Fail != 0 {
		p.result.Err = &comm.CommandError{Code: s.Fail}
		return p
	}
	p.result.Code = code
	switch code {
	case CodeConfigure:
		if len(data) < 1 || !Scale(data[0]).IsValid() {
			p.result.Err = &comm.CommandError{Code: code}
			break
		}
		s.scale = Scale(data[0])
	case CodeReadRotation:
		raw := s.rotation() / float64(s.scale.Sensitivity())
		raw = math.Max(math.MinInt16, math.Min(math.MaxInt16, raw))
		p.result.Data = make([]byte, 6)
		encodeAxis(p.result.Data[4:], int16(raw))
	default:
		p.result.Err = &comm.CommandError{Code: code}
	}
	return p
}
