// Package dispatch provides completion contexts: places where async results
// are handed back to the consumer.
package dispatch

import "errors"

// ErrStopped is returned by Dispatch when the context no longer accepts work
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher runs fn on its completion context. A nil error means fn will run;
// on error fn is never run.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// Inline runs fn immediately on the calling goroutine
type Inline struct{}

// Dispatch implements Dispatcher
func (Inline) Dispatch(fn func()) error {
	fn()
	return nil
}

// Func adapts a plain function to Dispatcher
type Func func(fn func())

// Dispatch implements Dispatcher
func (f Func) Dispatch(fn func()) error {
	f(fn)
	return nil
}
