package observability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aalemi-dev/calltrace/observability"
)

func TestNoOpObserver(t *testing.T) {
	t.Parallel()
	observer := observability.NewNoOpObserver()

	assert.NotPanics(t, func() {
		observer.ObserveOperation(observability.OperationContext{
			Component: "httpclient",
			Operation: "GET",
		})
	})
}

func TestObserverFunc(t *testing.T) {
	t.Parallel()
	var got observability.OperationContext
	observer := observability.ObserverFunc(func(ctx observability.OperationContext) { got = ctx })

	observer.ObserveOperation(observability.OperationContext{
		Component:  "kafka",
		Operation:  "produce",
		Resource:   "orders",
		Duration:   10 * time.Millisecond,
		StatusCode: 0,
		Error:      errors.New("leader not available"),
	})

	assert.Equal(t, "kafka", got.Component)
	assert.Equal(t, "orders", got.Resource)
	assert.EqualError(t, got.Error, "leader not available")
}

func TestMulti(t *testing.T) {
	t.Parallel()
	var calls []string
	a := observability.ObserverFunc(func(observability.OperationContext) { calls = append(calls, "a") })
	b := observability.ObserverFunc(func(observability.OperationContext) { calls = append(calls, "b") })

	observability.Multi(a, nil, b).ObserveOperation(observability.OperationContext{})

	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestMulti_Collapses(t *testing.T) {
	t.Parallel()
	assert.Nil(t, observability.Multi())
	assert.Nil(t, observability.Multi(nil, nil))

	single := observability.NewNoOpObserver()
	assert.Same(t, single, observability.Multi(nil, single))
}
