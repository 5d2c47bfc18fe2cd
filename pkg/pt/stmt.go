package pt

// Stmt is a statement of a protothread body.
type Stmt interface {
	compile(*compiler)
}

type stmtFunc func(*compiler)

func (f stmtFunc) compile(c *compiler) { f(c) }

// Do runs fn and continues. Variables declared in fn are gone once the
// body blocks.
func Do(fn func()) Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opDo, fn: fn})
	})
}

// Block groups statements.
func Block(stmts ...Stmt) Stmt {
	return stmtFunc(func(c *compiler) {
		c.compileAll(stmts)
	})
}

// WaitUntil blocks until cond returns true. cond is evaluated every time
// the body reaches or resumes at this point.
func WaitUntil(cond func() bool) Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opWait, cond: cond})
	})
}

// WaitWhile blocks as long as cond returns true.
func WaitWhile(cond func() bool) Stmt {
	return WaitUntil(func() bool { return !cond() })
}

// Yield blocks exactly once. The next run continues after it.
func Yield() Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opYield})
	})
}

// Call restarts child and runs it once per run of the body until it
// terminates. The body continues in the same run that child terminates.
func Call[T Task](child T) Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opRestart, fn: child.Restart})
		c.emit(op{code: opCall, run: child.Run})
	})
}

// CallResult is Call storing the outcome of child into ok once it
// terminates.
func CallResult[T ResultTask](child T, ok *bool) Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opRestart, fn: child.Restart})
		c.emit(op{code: opCall, run: child.Run, result: child.Result, out: ok})
	})
}

// WaitThread runs child, without restarting it, until it terminates.
func WaitThread[T Runner](child T) Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opCall, run: child.Run})
	})
}

// Exit terminates the protothread with a successful result.
func Exit() Stmt {
	return ExitWith(true)
}

// ExitWith terminates the protothread with the given result.
func ExitWith(ok bool) Stmt {
	return stmtFunc(func(c *compiler) {
		c.emit(op{code: opExit, ok: ok})
	})
}

// Loop repeats stmts forever. It must contain a blocking statement, a
// Break or an Exit.
func Loop(stmts ...Stmt) Stmt {
	return stmtFunc(func(c *compiler) {
		c.loop(nil, stmts)
	})
}

// While repeats stmts as long as cond returns true. cond is checked
// before every iteration.
func While(cond func() bool, stmts ...Stmt) Stmt {
	return stmtFunc(func(c *compiler) {
		c.loop(cond, stmts)
	})
}

// Break leaves the innermost Loop or While.
func Break() Stmt {
	return stmtFunc(func(c *compiler) {
		scope := c.innermostLoop("Break")
		scope.breaks = append(scope.breaks, c.emit(op{code: opJump}))
	})
}

// Continue starts the next iteration of the innermost Loop or While.
func Continue() Stmt {
	return stmtFunc(func(c *compiler) {
		scope := c.innermostLoop("Continue")
		scope.continues = append(scope.continues, c.emit(op{code: opJump}))
	})
}

type branch struct {
	cond  func() bool
	stmts []Stmt
}

// IfStmt is a conditional statement built by If.
type IfStmt struct {
	branches []branch
	others   []Stmt
}

// If runs stmts when cond returns true.
func If(cond func() bool, stmts ...Stmt) *IfStmt {
	return &IfStmt{branches: []branch{{cond: cond, stmts: stmts}}}
}

// ElseIf adds a branch checked when all previous conditions are false.
func (s *IfStmt) ElseIf(cond func() bool, stmts ...Stmt) *IfStmt {
	s.branches = append(s.branches, branch{cond: cond, stmts: stmts})
	return s
}

// Else sets statements run when no condition is true.
func (s *IfStmt) Else(stmts ...Stmt) *IfStmt {
	s.others = stmts
	return s
}

func (s *IfStmt) compile(c *compiler) {
	var ends []int
	for _, b := range s.branches {
		next := c.emit(op{code: opBranch, cond: b.cond})
		c.compileAll(b.stmts)
		ends = append(ends, c.emit(op{code: opJump}))
		c.patch(next)
	}
	c.compileAll(s.others)
	for _, at := range ends {
		c.patch(at)
	}
}
