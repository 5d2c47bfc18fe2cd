package pt

import "fmt"

type opCode uint8

const (
	opDo      opCode = iota // run fn
	opWait                  // block until cond
	opYield                 // block once
	opRestart               // restart a nested task
	opCall                  // block until the nested task terminates
	opJump                  // goto target
	opBranch                // goto target unless cond
	opExit                  // terminate with result
)

type op struct {
	code   opCode
	fn     func()
	cond   func() bool
	run    func() bool
	result func() bool
	out    *bool
	target State
	ok     bool
}

// Program is a compiled protothread body. It is immutable and may be
// shared by protothreads whose steps don't capture per-instance state.
type Program struct {
	ops []op
}

// Compile compiles statements into a Program. It panics if the body is
// malformed: Break or Continue outside a loop, a Loop which can never
// block or leave, or too many instructions.
func Compile(stmts ...Stmt) *Program {
	c := &compiler{}
	c.compileAll(stmts)
	if len(c.ops) >= MaxProgramLen {
		panic(fmt.Sprintf("pt: program too large (%d instructions)", len(c.ops)))
	}
	return &Program{ops: c.ops}
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.ops)
}

// Run runs the next part of the body for the protothread t, or returns
// immediately if it's still waiting. Returns true if the protothread is
// still running, false if it has finished.
func (p *Program) Run(t *Protothread) bool {
	pc := t.state
	if pc == Terminated {
		return false
	}
	if checkReentry {
		if t.entered {
			panic(ErrReentered)
		}
		t.entered = true
		defer func() { t.entered = false }()
	}
	for int(pc) < len(p.ops) {
		o := &p.ops[pc]
		switch o.code {
		case opDo:
			o.fn()
			pc++
		case opWait:
			if !o.cond() {
				t.state = pc
				return true
			}
			pc++
		case opYield:
			t.state = pc + 1
			return true
		case opRestart:
			o.fn()
			pc++
		case opCall:
			if o.run() {
				t.state = pc
				return true
			}
			if o.out != nil {
				*o.out = o.result()
			}
			pc++
		case opJump:
			pc = o.target
		case opBranch:
			if o.cond() {
				pc++
			} else {
				pc = o.target
			}
		case opExit:
			return t.terminate(o.ok)
		}
	}
	return t.terminate(true)
}

type loopScope struct {
	start     State
	breaks    []int
	continues []int
}

type compiler struct {
	ops      []op
	loops    []*loopScope
	blocking int // number of suspension points emitted
	exits    int // number of Exit emitted
}

func (c *compiler) compileAll(stmts []Stmt) {
	for _, s := range stmts {
		if s != nil {
			s.compile(c)
		}
	}
}

func (c *compiler) pc() State {
	return State(len(c.ops))
}

func (c *compiler) emit(o op) int {
	switch o.code {
	case opWait, opYield, opCall:
		c.blocking++
	case opExit:
		c.exits++
	}
	c.ops = append(c.ops, o)
	return len(c.ops) - 1
}

func (c *compiler) patch(at int) {
	c.ops[at].target = c.pc()
}

func (c *compiler) loop(cond func() bool, body []Stmt) {
	scope := &loopScope{start: c.pc()}
	blocking, exits := c.blocking, c.exits
	exitAt := -1
	if cond != nil {
		exitAt = c.emit(op{code: opBranch, cond: cond})
	}
	c.loops = append(c.loops, scope)
	c.compileAll(body)
	c.loops = c.loops[:len(c.loops)-1]
	// a Break only leaves its own scope, one inside a nested loop doesn't count.
	if cond == nil && c.blocking == blocking && c.exits == exits && len(scope.breaks) == 0 {
		panic("pt: Loop without any blocking statement, Break or Exit")
	}
	for _, at := range scope.continues {
		c.ops[at].target = scope.start
	}
	c.emit(op{code: opJump, target: scope.start})
	if exitAt >= 0 {
		c.patch(exitAt)
	}
	for _, at := range scope.breaks {
		c.patch(at)
	}
}

func (c *compiler) innermostLoop(what string) *loopScope {
	if len(c.loops) == 0 {
		panic("pt: " + what + " outside of a loop")
	}
	return c.loops[len(c.loops)-1]
}
