package interceptor

import (
	"fmt"

	"github.com/aalemi-dev/calltrace/callctx"
)

// Chain is an ordered list of interceptors. Before hooks run in order and
// After hooks in reverse order. A panicking hook is recovered and logged.
//
// A Chain must not be modified once calls go through it.
type Chain[A, R any] struct {
	interceptors []Interceptor[A, R]
	logger       Logger
}

// NewChain returns a chain of the given interceptors. logger may be nil.
func NewChain[A, R any](logger Logger, interceptors ...Interceptor[A, R]) *Chain[A, R] {
	return &Chain[A, R]{interceptors: interceptors, logger: logger}
}

// Use appends interceptors to the chain.
func (c *Chain[A, R]) Use(interceptors ...Interceptor[A, R]) {
	c.interceptors = append(c.interceptors, interceptors...)
}

// Len returns the number of interceptors.
func (c *Chain[A, R]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.interceptors)
}

// Before runs every Before hook in order.
func (c *Chain[A, R]) Before(call *Call[A, R], cctx *callctx.Context) {
	if c == nil {
		return
	}
	for _, i := range c.interceptors {
		c.guard("before", call, cctx, i.Before)
	}
}

// After runs every After hook in reverse order.
func (c *Chain[A, R]) After(call *Call[A, R], cctx *callctx.Context) {
	if c == nil {
		return
	}
	for n := len(c.interceptors) - 1; n >= 0; n-- {
		c.guard("after", call, cctx, c.interceptors[n].After)
	}
}

func (c *Chain[A, R]) guard(phase string, call *Call[A, R], cctx *callctx.Context, hook func(*Call[A, R], *callctx.Context)) {
	defer func() {
		if p := recover(); p != nil && c.logger != nil {
			c.logger.ErrorWithContext(cctx.Ctx(), "interceptor hook panicked", fmt.Errorf("%w: %v", ErrInterceptorPanic, p), map[string]interface{}{
				"phase":      phase,
				"method":     call.Method,
				"attempt_id": cctx.ID(),
			})
		}
	}()
	hook(call, cctx)
}

type firstEnter[A, R any] struct {
	token *callctx.Token
	inner Interceptor[A, R]
}

// FirstEnter wraps inner so that only the outermost of nested firings sharing
// token reaches it: Before on the first entry and After on the matching last exit.
func FirstEnter[A, R any](token *callctx.Token, inner Interceptor[A, R]) Interceptor[A, R] {
	return &firstEnter[A, R]{token: token, inner: inner}
}

func (f *firstEnter[A, R]) Before(call *Call[A, R], cctx *callctx.Context) {
	if cctx.Enter(f.token, 1) {
		f.inner.Before(call, cctx)
	}
}

func (f *firstEnter[A, R]) After(call *Call[A, R], cctx *callctx.Context) {
	if cctx.Out(f.token, 1) {
		f.inner.After(call, cctx)
	}
}
