package callctx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterOut_Depth1(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	tok := NewToken("http")

	assert.True(t, c.Enter(tok, 1))
	assert.False(t, c.Enter(tok, 1))
	assert.False(t, c.Enter(tok, 1))
	assert.Equal(t, 3, c.Count(tok))

	assert.False(t, c.Out(tok, 1))
	assert.False(t, c.Out(tok, 1))
	assert.True(t, c.Out(tok, 1))
	assert.Equal(t, 0, c.Count(tok))
}

func TestOut_NeverNegative(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	tok := NewToken("http")

	assert.False(t, c.Out(tok, 1))
	assert.False(t, c.Out(tok, 1))
	assert.Equal(t, 0, c.Count(tok))

	// the unmatched exits above must not shift the next pairing
	assert.True(t, c.Enter(tok, 1))
	assert.True(t, c.Out(tok, 1))
}

func TestEnterOut_Depth2(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	tok := NewToken("nested")

	assert.False(t, c.Enter(tok, 2))
	assert.True(t, c.Enter(tok, 2))
	assert.False(t, c.Enter(tok, 2))

	assert.False(t, c.Out(tok, 2))
	assert.True(t, c.Out(tok, 2))
	assert.False(t, c.Out(tok, 2))
}

func TestTokensAreIndependent(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	a, b := NewToken("same"), NewToken("same")

	assert.True(t, c.Enter(a, 1))
	assert.True(t, c.Enter(b, 1))
	assert.Equal(t, 1, c.Count(a))
	assert.True(t, c.Out(b, 1))
	assert.Equal(t, 1, c.Count(a))
}

func TestAttributes(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	name := NewKey[string]("name")
	count := NewKey[int]("count")

	_, ok := Value(c, name)
	assert.False(t, ok)

	Set(c, name, "GET /orders")
	Set(c, count, 3)

	v, ok := Value(c, name)
	require.True(t, ok)
	assert.Equal(t, "GET /orders", v)

	n, ok := Delete(c, count)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = Value(c, count)
	assert.False(t, ok)
}

func TestFromContext(t *testing.T) {
	t.Parallel()
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	c := New(context.Background())
	found, ok := FromContext(c.Ctx())
	require.True(t, ok)
	assert.Same(t, c, found)

	_, err := MustFromContext(context.Background())
	assert.True(t, errors.Is(err, ErrNoContext))
}

func TestFromOrNew(t *testing.T) {
	t.Parallel()
	c, existed := FromOrNew(context.Background())
	assert.False(t, existed)

	again, existed := FromOrNew(c.Ctx())
	assert.True(t, existed)
	assert.Same(t, c, again)
}

func TestSetCtx_KeepsContextReachable(t *testing.T) {
	t.Parallel()
	type k struct{}
	c := New(context.Background())

	c.SetCtx(context.WithValue(context.Background(), k{}, "span"))

	assert.Equal(t, "span", c.Ctx().Value(k{}))
	found, ok := FromContext(c.Ctx())
	require.True(t, ok)
	assert.Same(t, c, found)

	c.SetCtx(nil)
	assert.Equal(t, "span", c.Ctx().Value(k{}))
}

func TestIDsAreUnique(t *testing.T) {
	t.Parallel()
	a, b := New(context.Background()), New(context.Background())
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotNil(t, a.Lock())
}

func TestAttach_JoinsOnlyRunningAttempt(t *testing.T) {
	t.Parallel()
	c, joined := Attach(context.Background())
	assert.False(t, joined)
	assert.True(t, c.Running())

	nested, joined := Attach(c.Ctx())
	assert.True(t, joined)
	assert.Same(t, c, nested)

	nested.Leave()
	assert.True(t, c.Running())
	c.Leave()
	assert.False(t, c.Running())

	// the context outlived the attempt
	fresh, joined := Attach(c.Ctx())
	assert.False(t, joined)
	assert.NotSame(t, c, fresh)
	assert.NotEqual(t, c.ID(), fresh.ID())
	fresh.Leave()
}

func TestAttach_NewContextIsNotRunning(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	assert.False(t, c.Running())

	other, joined := Attach(c.Ctx())
	assert.False(t, joined)
	assert.NotSame(t, c, other)

	c.Leave()
	assert.False(t, c.Running())
}

func TestContext_ConcurrentUse(t *testing.T) {
	t.Parallel()
	c := New(context.Background())
	tok := NewToken("http")
	key := NewKey[int]("n")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Enter(tok, 1)
				Set(c, key, i)
				_, _ = Value(c, key)
				c.SetCtx(c.Ctx())
				c.Out(tok, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, c.Count(tok))
}
