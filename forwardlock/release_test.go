package forwardlock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome[string]
}

func (r *recorder) finish(o Outcome[string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recorder) all() []Outcome[string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome[string](nil), r.outcomes...)
}

func TestAcquire_OwnerThenSecondary(t *testing.T) {
	t.Parallel()
	var l ForwardLock

	owner := Acquire[string](&l, nil)
	nested := Acquire[string](&l, nil)

	assert.True(t, owner.Owner())
	assert.False(t, nested.Owner())
	assert.True(t, l.Held())

	nested.Exit(Outcome[string]{})
	assert.True(t, l.Held())

	owner.Exit(Outcome[string]{})
	assert.False(t, l.Held())
	assert.True(t, Acquire[string](&l, nil).Owner())
}

func TestRelease_SyncPath(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	r := Acquire(&ForwardLock{}, rec.finish)

	r.Exit(Outcome[string]{Value: "ok"})
	r.Exit(Outcome[string]{Value: "again"})

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Value)
	assert.False(t, got[0].At.IsZero())
	assert.True(t, r.Finished())
}

func TestRelease_SecondaryIgnoresDefer(t *testing.T) {
	t.Parallel()
	var l ForwardLock
	_ = Acquire[string](&l, nil)
	rec := &recorder{}
	r := Acquire(&l, rec.finish)

	assert.False(t, r.Defer())
	r.Complete(Outcome[string]{Value: "late"})
	r.Exit(Outcome[string]{Value: "now"})

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "now", got[0].Value)
}

func TestRelease_DeferredCompletesAfterExit(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	r := Acquire(&ForwardLock{}, rec.finish)
	require.True(t, r.Defer())

	r.Exit(Outcome[string]{Value: "sync"})
	assert.Empty(t, rec.all())

	completedAt := time.Now().Add(50 * time.Millisecond)
	r.Complete(Outcome[string]{Value: "async", At: completedAt})

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "async", got[0].Value)
	assert.Equal(t, completedAt, got[0].At)
}

func TestRelease_DeferredCompletesBeforeExit(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	r := Acquire(&ForwardLock{}, rec.finish)
	require.True(t, r.Defer())

	r.Complete(Outcome[string]{Value: "async"})
	assert.Empty(t, rec.all())

	r.Exit(Outcome[string]{Value: "sync"})
	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, "async", got[0].Value)
}

func TestRelease_DeferredButFailedSynchronously(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	r := Acquire(&ForwardLock{}, rec.finish)
	require.True(t, r.Defer())

	boom := errors.New("writer closed")
	r.Exit(Outcome[string]{Err: boom})
	r.Complete(Outcome[string]{Value: "never"})

	got := rec.all()
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, boom)
}

func TestRelease_DeferAfterExitRefused(t *testing.T) {
	t.Parallel()
	r := Acquire[string](&ForwardLock{}, nil)
	r.Exit(Outcome[string]{})
	assert.False(t, r.Defer())
	assert.False(t, r.Deferred())
}

func TestRelease_ExactlyOnceUnderRace(t *testing.T) {
	t.Parallel()
	for i := 0; i < 200; i++ {
		var calls atomic.Int32
		r := Acquire(&ForwardLock{}, func(Outcome[int]) { calls.Add(1) })
		require.True(t, r.Defer())

		var wg sync.WaitGroup
		wg.Add(3)
		go func() { defer wg.Done(); r.Exit(Outcome[int]{Value: 1}) }()
		go func() { defer wg.Done(); r.Complete(Outcome[int]{Value: 2}) }()
		go func() { defer wg.Done(); r.Complete(Outcome[int]{Value: 3}) }()
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	}
}
