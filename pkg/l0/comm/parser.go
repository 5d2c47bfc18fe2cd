package comm

import (
	"github.com/robotalks/pt.go/pkg/pt"
)

// Parser parses bytes received. The receiving sequence is a protothread
// resumed once per byte, so a zero Parser is ready to use.
type Parser struct {
	thread   pt.Thread
	compiled bool

	// input and outputs of the current step.
	in   byte
	sync byte
	out  *Packet

	peerSeq PacketSeq
	state   parseState
	packet  *Packet
	dataLen byte
	recvLen byte
}

// SyncState indicates the state of communication.
type SyncState int

const (
	// SyncStateSyncing means the communication is not synchronized.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the communication is synchronized and ready for packets.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means there's on-going communication for syncing or a packet.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates if the communication is ready for packets.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates if it's in the middle for syncing or receiving a packet.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// TimerAction defines what to do with timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Sync   byte
	State  SyncState
	Packet *Packet
}

// WhatAboutTimer decides what to do with timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.State.IsReceiving() || r.Sync == syncREQ {
		return TimerRestart
	}
	if r.State.IsReady() {
		return TimerStop
	}
	return TimerNoChange
}

type parseState int

const (
	stateSyncAck    parseState = iota // sync req sent, waiting for syncACK
	stateSyncReqSeq                   // waiting for sync seq after syncREQ
	stateSyncAckSeq                   // waiting for sync seq after syncACK
	stateMsgSeq                       // waiting for message seq
	stateMsgAckSeq                    // recv ack in MsgSeq, validate seq
	stateMsgCode                      // waiting for message code
	stateMsgLen                       // waiting for message length
	stateMsgData                      // waiting for message data
)

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.state == stateSyncAck {
		return SyncStateSyncing
	}
	if p.state == stateMsgSeq {
		return SyncStateReady
	}
	if p.state > stateMsgSeq {
		return SyncStateReady | SyncStateReceiving
	}
	return SyncStateSyncing | SyncStateReceiving
}

// Reset resets the internal state of parser.
func (p *Parser) Reset() ParseResult {
	p.begin()
	p.restart()
	return p.result()
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) ParseResult {
	p.begin()
	p.in = b
	p.thread.Run()
	return p.result()
}

// Timeout notifies the parser timer expires.
func (p *Parser) Timeout() ParseResult {
	p.begin()
	if p.state != stateMsgSeq {
		p.restart()
	}
	return p.result()
}

func (p *Parser) begin() {
	if !p.compiled {
		p.thread.Init(p.body()...)
		p.compiled = true
		// park before the first byte.
		p.thread.Run()
	}
	p.sync, p.out = 0, nil
}

func (p *Parser) result() ParseResult {
	return ParseResult{Sync: p.sync, State: p.State(), Packet: p.out}
}

func (p *Parser) restart() {
	p.resync()
	p.thread.Restart()
	p.thread.Run()
}

func (p *Parser) resync() {
	p.state, p.packet = stateSyncAck, nil
	p.sync = syncREQ
}

func (p *Parser) body() []pt.Stmt {
	return []pt.Stmt{
		pt.Loop(
			pt.Yield(),
			pt.If(p.inState(stateSyncAck),
				pt.If(p.received(syncREQ), p.recvSyncSeq(stateSyncReqSeq, syncACK)).
					ElseIf(p.received(syncACK), p.recvSyncSeq(stateSyncAckSeq, 0)),
			).ElseIf(p.received(syncREQ),
				p.recvSyncSeq(stateSyncReqSeq, syncACK),
			).ElseIf(p.received(syncACK),
				pt.Do(func() { p.state = stateMsgAckSeq }),
				pt.Yield(),
				pt.If(func() bool { return p.in == byte(p.peerSeq) }, pt.Do(func() { p.state = stateMsgSeq })).
					Else(pt.Do(p.resync)),
			).ElseIf(func() bool { return p.in != byte(p.peerSeq) },
				pt.Do(p.resync),
			).Else(
				p.recvPacket(),
			),
		),
	}
}

// recvSyncSeq validates the sequence byte following a sync command.
func (p *Parser) recvSyncSeq(state parseState, reply byte) pt.Stmt {
	return pt.Block(
		pt.Do(func() { p.state = state }),
		pt.Yield(),
		pt.If(func() bool { return PacketSeq(p.in).IsValid() },
			pt.Do(func() {
				p.peerSeq, p.state = PacketSeq(p.in), stateMsgSeq
				p.sync = reply
			}),
		).Else(pt.Do(p.resync)),
	)
}

// recvPacket receives a packet after its sequence byte has been accepted.
func (p *Parser) recvPacket() pt.Stmt {
	return pt.Block(
		pt.Do(func() {
			p.packet = &Packet{Seq: p.peerSeq}
			p.peerSeq = p.peerSeq.Next()
			p.state = stateMsgCode
		}),
		pt.Yield(),
		pt.Do(func() {
			p.packet.Code = p.in & 0x8f
			p.dataLen = (p.in >> 4) & 7
		}),
		pt.If(func() bool { return p.dataLen == 7 },
			pt.Do(func() { p.state = stateMsgLen }),
			pt.Yield(),
			pt.If(func() bool { return p.in >= 0x80 }, pt.Do(p.resync), pt.Continue()),
			pt.Do(func() { p.dataLen = p.in }),
		),
		pt.If(func() bool { return p.dataLen > 0 },
			pt.Do(func() {
				p.packet.Data, p.recvLen = make([]byte, p.dataLen), 0
				p.state = stateMsgData
			}),
			pt.While(func() bool { return p.recvLen < p.dataLen },
				pt.Yield(),
				pt.Do(func() {
					p.packet.Data[p.recvLen] = p.in
					p.recvLen++
				}),
			),
		),
		pt.Do(func() {
			p.state = stateMsgSeq
			p.out, p.packet = p.packet, nil
		}),
	)
}

func (p *Parser) inState(state parseState) func() bool {
	return func() bool { return p.state == state }
}

func (p *Parser) received(b byte) func() bool {
	return func() bool { return p.in == b }
}
