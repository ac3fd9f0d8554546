package callctx

import "errors"

// ErrNoContext is returned by MustFrom-style helpers when a context.Context
// does not carry an attempt Context.
var ErrNoContext = errors.New("callctx: no attempt context in context.Context")
