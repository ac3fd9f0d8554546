package forwardlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_CompleteOnce(t *testing.T) {
	t.Parallel()
	f := NewFuture[int]()

	_, err := f.Result()
	assert.ErrorIs(t, err, ErrPending)

	assert.True(t, f.Complete(7, nil))
	assert.False(t, f.Complete(8, errors.New("late")))

	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
}

func TestFuture_OnComplete(t *testing.T) {
	t.Parallel()
	f := NewFuture[string]()
	var order []string

	f.OnComplete(func(o Outcome[string]) { order = append(order, "first:"+o.Value) })
	f.OnComplete(func(o Outcome[string]) { order = append(order, "second:"+o.Value) })
	f.Complete("x", nil)
	f.OnComplete(func(o Outcome[string]) { order = append(order, "late:"+o.Value) })

	assert.Equal(t, []string{"first:x", "second:x", "late:x"}, order)
}

func TestFuture_Await(t *testing.T) {
	t.Parallel()
	f := NewFuture[int]()
	boom := errors.New("delivery failed")

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Complete(0, boom)
	}()

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFuture_AwaitCanceled(t *testing.T) {
	t.Parallel()
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_DrivesRelease(t *testing.T) {
	t.Parallel()
	f := NewFuture[string]()
	done := make(chan Outcome[string], 1)
	r := Acquire(&ForwardLock{}, func(o Outcome[string]) { done <- o })

	require.True(t, r.Defer())
	f.OnComplete(r.Complete)
	r.Exit(Outcome[string]{})

	go f.Complete("offset-42", nil)

	select {
	case o := <-done:
		assert.Equal(t, "offset-42", o.Value)
	case <-time.After(time.Second):
		t.Fatal("release did not finish")
	}
}
