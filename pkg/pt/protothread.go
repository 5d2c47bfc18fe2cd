package pt

import "errors"

// State stores a protothread's position (what Dunkels calls a
// "local continuation").
type State uint16

// Terminated is the position of a protothread which has ended, exited or
// been stopped.
const Terminated State = ^State(0)

// MaxProgramLen is the maximum number of instructions in a Program.
const MaxProgramLen = int(Terminated)

var (
	// ErrReentered indicates a body was invoked while already executing.
	// It is only detected in builds with the ptdebug tag.
	ErrReentered = errors.New("protothread re-entered")
)

// Protothread is the persisted state of a protothread. The zero value
// starts from the beginning of its body.
type Protothread struct {
	state   State
	result  bool
	entered bool
}

// Restart rewinds the protothread to the beginning of its body, abandoning
// any wait or nested call in progress.
func (p *Protothread) Restart() {
	p.state, p.result = 0, false
}

// Stop terminates the protothread. It happens automatically at the end
// of the body.
func (p *Protothread) Stop() {
	p.state, p.result = Terminated, false
}

// IsRunning returns true if the protothread is running or waiting,
// false if it has ended or exited.
func (p *Protothread) IsRunning() bool {
	return p.state != Terminated
}

// State returns the current resume position.
func (p *Protothread) State() State {
	return p.state
}

// Result is the outcome of the last completed run: true when the body ran
// to its end or called Exit, the given value for ExitWith. It is false
// while running and after Restart or Stop.
func (p *Protothread) Result() bool {
	return p.state == Terminated && p.result
}

func (p *Protothread) terminate(ok bool) bool {
	p.state, p.result = Terminated, ok
	return false
}

// Runner is anything driven by repeated calls to Run, which returns
// true while still running.
type Runner interface {
	Run() bool
}

// Task is a Runner with protothread lifecycle control.
type Task interface {
	Runner
	Restart()
	Stop()
	IsRunning() bool
}

// ResultTask is a Task reporting a boolean outcome once terminated.
type ResultTask interface {
	Task
	Result() bool
}
