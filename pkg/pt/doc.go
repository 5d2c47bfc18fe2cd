// Package pt provides protothreads: very lightweight, stackless threads
// for cooperative control loops.
//
// A protothread keeps a single resume position (State). Its body is a list
// of statements compiled once into a Program. Each time the body is run it
// dispatches straight to the stored position and executes forward until it
// blocks (WaitUntil, WaitWhile, Yield, Call) or exits. Scheduling is entirely
// up to the caller: nothing runs unless the body is invoked, and a blocking
// wait is just an early return to the caller.
//
// Because no stack is saved across a blocking statement, variables declared
// inside a Do step do not survive it. Anything that must be remembered after
// a wait belongs in a field of the object owning the protothread:
//
//	type Blinker struct {
//		pt.Thread
//		Led     Led
//		timeout timeout.Timeout
//	}
//
//	func NewBlinker(led Led) *Blinker {
//		b := &Blinker{Led: led}
//		b.Init(
//			pt.Loop(
//				pt.Do(func() { b.Led.Set(true); b.timeout.Restart(100 * time.Millisecond) }),
//				pt.WaitUntil(b.timeout.IsExpired),
//				pt.Do(func() { b.Led.Set(false); b.timeout.Restart(200 * time.Millisecond) }),
//				pt.WaitUntil(b.timeout.IsExpired),
//			),
//		)
//		return b
//	}
//
//	for b.Run() {
//		...
//	}
//
// A body must never be invoked from within itself. Panics raised by steps or
// conditions are not recovered and reach whoever invoked the body.
package pt
