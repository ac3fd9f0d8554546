package callctx

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aalemi-dev/calltrace/forwardlock"
)

// Token identifies one guard counter. Tokens compare by pointer identity, so
// every package declares its own with NewToken.
type Token struct {
	name string
}

// NewToken returns a new guard token. The name is only used for debugging.
func NewToken(name string) *Token {
	return &Token{name: name}
}

func (t *Token) String() string {
	return t.name
}

// Key is a typed attribute key. Keys compare by pointer identity.
type Key[T any] struct {
	name string
}

// NewKey returns a new attribute key for values of type T.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string {
	return k.name
}

type ctxKey struct{}

// Context is the interception state of one call attempt. It is safe for
// concurrent use.
type Context struct {
	id   string
	lock *forwardlock.ForwardLock

	mu       sync.Mutex
	ctx      context.Context
	counters map[*Token]int
	attrs    map[any]any
	// running counts the operations of this attempt that have not returned yet.
	running int
}

// New creates the Context of a new call attempt. The returned Context stores
// itself in its active context, so FromContext(c.Ctx()) returns c.
func New(parent context.Context) *Context {
	if parent == nil {
		parent = context.Background()
	}
	c := &Context{
		id:       uuid.NewString(),
		counters: make(map[*Token]int),
		attrs:    make(map[any]any),
		lock:     &forwardlock.ForwardLock{},
	}
	c.ctx = context.WithValue(parent, ctxKey{}, c)
	return c
}

// FromContext returns the attempt Context stored in ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok && c != nil
}

// MustFromContext is FromContext returning ErrNoContext when ctx has no attempt Context.
func MustFromContext(ctx context.Context) (*Context, error) {
	c, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoContext
	}
	return c, nil
}

// FromOrNew returns the attempt Context already in ctx, or a new one.
// The boolean reports whether an existing Context was found. Unlike Attach it
// does not look at whether the found attempt is still running.
func FromOrNew(ctx context.Context) (*Context, bool) {
	if c, ok := FromContext(ctx); ok {
		return c, true
	}
	return New(ctx), false
}

// Attach returns the attempt Context in ctx while one of its operations is
// still running, and a new attempt Context otherwise. The boolean reports
// whether an existing attempt was joined. Either way the returned Context
// counts one more running operation until Leave is called.
//
// A context that outlives its attempt, such as the context of a consumed
// message or of a finished request, therefore starts a new attempt instead of
// joining a stale one:
//
//	cctx, _ := callctx.Attach(ctx)
//	defer cctx.Leave()
//	resp, err := op(cctx.Ctx())
func Attach(ctx context.Context) (*Context, bool) {
	if c, ok := FromContext(ctx); ok {
		c.mu.Lock()
		if c.running > 0 {
			c.running++
			c.mu.Unlock()
			return c, true
		}
		c.mu.Unlock()
	}
	c := New(ctx)
	c.running = 1
	return c, false
}

// Leave ends one running operation started with Attach.
func (c *Context) Leave() {
	c.mu.Lock()
	if c.running > 0 {
		c.running--
	}
	c.mu.Unlock()
}

// Running reports whether an operation of the attempt has not returned yet.
func (c *Context) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running > 0
}

// ID is the attempt identifier, unique per Context.
func (c *Context) ID() string {
	return c.id
}

// Ctx returns the active context of the attempt. While a scope is open it
// carries the current span.
func (c *Context) Ctx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// SetCtx replaces the active context. The Context is re-attached to ctx when
// it is not already reachable from it.
func (c *Context) SetCtx(ctx context.Context) {
	if ctx == nil {
		return
	}
	if found, ok := FromContext(ctx); !ok || found != c {
		ctx = context.WithValue(ctx, ctxKey{}, c)
	}
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}

// Lock returns the ForwardLock of the attempt.
func (c *Context) Lock() *forwardlock.ForwardLock {
	return c.lock
}

func (c *Context) String() string {
	return fmt.Sprintf("callctx(%s)", c.id)
}
