package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// DefaultSyncTimeout is how long the FIFO waits for the peer during
// synchronization or in the middle of a packet.
const DefaultSyncTimeout = 100 * time.Millisecond

// PacketHandler is called when a packet is received.
type PacketHandler interface {
	HandlePacket(context.Context, *Packet)
}

// HandlePacketFunc is the func form of PacketHandler.
type HandlePacketFunc func(context.Context, *Packet)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pkt *Packet) {
	f(ctx, pkt)
}

// StateNotifier is called when the link state changes.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is the func form of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// Stats counts the traffic of a FIFO.
type Stats struct {
	Sent     uint64
	Received uint64
	Resyncs  uint64
}

// FIFO sends packets and feeds received bytes to a Parser.
type FIFO struct {
	ReadWriter io.ReadWriter
	Handler    PacketHandler
	Notifier   StateNotifier
	Timeout    time.Duration
	// ReadTimeout is set if Read on ReadWriter returns on timeout, so
	// no extra goroutine is needed for reading.
	ReadTimeout bool

	seq   PacketSeq
	state SyncState
	lock  sync.RWMutex
	stats Stats

	syncTimer <-chan time.Time
	parser    Parser
}

// NewFIFO creates a FIFO.
func NewFIFO(rw io.ReadWriter) *FIFO {
	return &FIFO{
		ReadWriter: rw,
		Timeout:    DefaultSyncTimeout,
		seq:        NewPacketSeq(),
	}
}

// State returns the link state.
func (f *FIFO) State() SyncState {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.state
}

// Stats returns a snapshot of the counters.
func (f *FIFO) Stats() Stats {
	return Stats{
		Sent:     atomic.LoadUint64(&f.stats.Sent),
		Received: atomic.LoadUint64(&f.stats.Received),
		Resyncs:  atomic.LoadUint64(&f.stats.Resyncs),
	}
}

// Send assigns the next sequence to pkt and writes it.
func (f *FIFO) Send(pkt *Packet) error {
	if err := pkt.Validate(); err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.state.IsReady() {
		return ErrNotReady
	}
	pkt.Seq = f.seq
	if _, err := pkt.WriteTo(f.ReadWriter); err != nil {
		return err
	}
	f.seq = f.seq.Next()
	atomic.AddUint64(&f.stats.Sent, 1)
	return nil
}

// Run reads and parses bytes until ctx is done or reading fails.
func (f *FIFO) Run(ctx context.Context) error {
	if err := f.apply(ctx, f.parser.Reset()); err != nil {
		return err
	}
	if f.ReadTimeout {
		return f.runPolled(ctx)
	}
	return f.runReader(ctx)
}

// runPolled reads in place, relying on Read returning on timeout.
func (f *FIFO) runPolled(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		var pr ParseResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.syncTimer:
			pr = f.parser.Timeout()
		default:
			n, err := f.ReadWriter.Read(buf)
			switch {
			case err != nil && !os.IsTimeout(err):
				return err
			case err != nil || n == 0:
				pr = f.parser.Timeout()
			default:
				pr = f.parser.Parse(buf[0])
			}
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

// runReader reads from a separate goroutine.
func (f *FIFO) runReader(ctx context.Context) error {
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go f.readLoop(subCtx, byteCh, errCh)
	for {
		var pr ParseResult
		select {
		case b := <-byteCh:
			pr = f.parser.Parse(b)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-f.syncTimer:
			pr = f.parser.Timeout()
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

func (f *FIFO) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		if _, err := f.ReadWriter.Read(buf); err != nil {
			errCh <- err
			return
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (f *FIFO) apply(ctx context.Context, pr ParseResult) error {
	var notifier StateNotifier
	f.lock.Lock()
	if f.state != pr.State {
		f.state = pr.State
		notifier = f.Notifier
	}
	var err error
	if pr.Sync != 0 {
		_, err = f.ReadWriter.Write([]byte{pr.Sync, byte(f.seq)})
	}
	f.lock.Unlock()
	if err != nil {
		return err
	}
	if pr.Sync == syncREQ {
		atomic.AddUint64(&f.stats.Resyncs, 1)
	}
	f.updateTimer(pr)

	if notifier != nil {
		glog.V(2).Infof("l0: sync state %d", pr.State)
		notifier.StateChanged(ctx, pr.State)
	}
	if pkt := pr.Packet; pkt != nil {
		atomic.AddUint64(&f.stats.Received, 1)
		glog.V(4).Infof("l0: recv %s", pkt)
		if f.Handler != nil {
			f.Handler.HandlePacket(ctx, pkt)
		}
	}
	return nil
}

func (f *FIFO) updateTimer(pr ParseResult) {
	if f.ReadTimeout {
		// Read already times out, only a pending sync request needs a timer.
		if pr.Sync == syncREQ {
			f.syncTimer = time.After(f.Timeout)
		} else {
			f.syncTimer = nil
		}
		return
	}
	switch pr.WhatAboutTimer() {
	case TimerRestart:
		f.syncTimer = time.After(f.Timeout)
	case TimerStop:
		f.syncTimer = nil
	}
}
