package pt

// Thread bundles a Protothread with its compiled body. Embed it and call
// Init from the constructor, with statements that capture the embedding
// object for persistent state.
type Thread struct {
	Protothread
	program *Program
}

// New creates a Thread running stmts.
func New(stmts ...Stmt) *Thread {
	t := &Thread{}
	t.Init(stmts...)
	return t
}

// Init compiles the body and starts from its beginning.
func (t *Thread) Init(stmts ...Stmt) {
	t.InitProgram(Compile(stmts...))
}

// InitProgram uses an already compiled body.
func (t *Thread) InitProgram(p *Program) {
	t.program = p
	t.Restart()
}

// Run implements Runner.
func (t *Thread) Run() bool {
	return t.program.Run(&t.Protothread)
}
