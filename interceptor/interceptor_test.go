package interceptor

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/forwardlock"
	"github.com/aalemi-dev/calltrace/header"
	"github.com/aalemi-dev/calltrace/logger"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
	"github.com/aalemi-dev/calltrace/view"
)

type fakeReq struct {
	Method string
	URL    string
	Header http.Header
}

type fakeResp struct {
	code int
}

type opaqueReq struct {
	method string
}

var (
	fakeReqEx = view.RequestExtractor[*fakeReq]{
		Method: func(r *fakeReq) string { return r.Method },
		Path:   func(r *fakeReq) string { return r.URL },
	}
	fakeRespEx = view.ResponseExtractor[*fakeReq, *fakeResp]{
		Method:     func(r *fakeReq) string { return r.Method },
		StatusCode: func(r *fakeResp) int { return r.code },
	}
)

type syncAdapter struct {
	rw *header.Rewriter
}

func (syncAdapter) Component() string                          { return "fake" }
func (syncAdapter) SpanName(*Call[*fakeReq, *fakeResp]) string { return "" }
func (a syncAdapter) Request(call *Call[*fakeReq, *fakeResp]) (view.Request, error) {
	return view.NewRequest(call.Args, fakeReqEx, a.rw)
}
func (syncAdapter) Response(call *Call[*fakeReq, *fakeResp]) view.Response {
	return view.NewResponse(call.Args, call.Return, call.Err, fakeRespEx)
}

type asyncArgs struct {
	Req    *fakeReq
	Future *forwardlock.Future[*fakeResp]
}

type asyncAdapter struct{}

func (asyncAdapter) Component() string                            { return "fake-async" }
func (asyncAdapter) SpanName(*Call[*asyncArgs, *fakeResp]) string { return "publish" }
func (asyncAdapter) Request(call *Call[*asyncArgs, *fakeResp]) (view.Request, error) {
	return view.NewRequest(call.Args.Req, fakeReqEx, header.Default)
}
func (asyncAdapter) Response(call *Call[*asyncArgs, *fakeResp]) view.Response {
	return view.NewResponse(call.Args.Req, call.Return, call.Err, fakeRespEx)
}
func (asyncAdapter) HandOff(call *Call[*asyncArgs, *fakeResp]) bool {
	rel := call.Release
	if !rel.Defer() {
		return false
	}
	call.Args.Future.OnComplete(rel.Complete)
	return true
}

type opaqueAdapter struct{}

func (opaqueAdapter) Component() string                            { return "opaque" }
func (opaqueAdapter) SpanName(*Call[*opaqueReq, *fakeResp]) string { return "" }
func (opaqueAdapter) Request(call *Call[*opaqueReq, *fakeResp]) (view.Request, error) {
	return view.NewRequest(call.Args, view.RequestExtractor[*opaqueReq]{
		Method: func(r *opaqueReq) string { return r.method },
	}, header.NewRewriter())
}
func (opaqueAdapter) Response(call *Call[*opaqueReq, *fakeResp]) view.Response {
	return view.NewResponse(call.Args, call.Return, call.Err, view.ResponseExtractor[*opaqueReq, *fakeResp]{})
}

func newTracer(t *testing.T) (*tracer.TracerClient, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tc, err := tracer.NewClient(tracer.Config{ServiceName: "test"}, tracer.WithSpanProcessor(sr), tracer.WithoutGlobal())
	require.NoError(t, err)
	return tc, sr
}

func newLogger() (*logger.LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.LoggerClient{Zap: zap.New(core)}, logs
}

func newFakeReq() *fakeReq {
	return &fakeReq{Method: http.MethodGet, URL: "http://svc/orders", Header: http.Header{}}
}

func attemptID(s sdktrace.ReadOnlySpan) string {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == tracer.TagAttemptID {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestChain_Order(t *testing.T) {
	t.Parallel()
	var got []string
	rec := func(name string) Interceptor[int, int] {
		return Funcs[int, int]{
			BeforeFunc: func(*Call[int, int], *callctx.Context) { got = append(got, "before:"+name) },
			AfterFunc:  func(*Call[int, int], *callctx.Context) { got = append(got, "after:"+name) },
		}
	}
	chain := NewChain[int, int](nil, rec("a"), rec("b"))
	chain.Use(rec("c"))
	require.Equal(t, 3, chain.Len())

	v, err := Invoke(context.Background(), chain, &Call[int, int]{Args: 1},
		func(_ context.Context, call *Call[int, int]) (int, error) {
			got = append(got, "op")
			return call.Args + 1, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, []string{"before:a", "before:b", "before:c", "op", "after:c", "after:b", "after:a"}, got)
}

func TestChain_PanickingHookIsContained(t *testing.T) {
	t.Parallel()
	log, logs := newLogger()
	var afterRan bool
	chain := NewChain[int, int](log,
		Funcs[int, int]{AfterFunc: func(*Call[int, int], *callctx.Context) { afterRan = true }},
		Funcs[int, int]{BeforeFunc: func(*Call[int, int], *callctx.Context) { panic("bad hook") }},
	)

	v, err := Invoke(context.Background(), chain, &Call[int, int]{Method: "op"},
		func(context.Context, *Call[int, int]) (int, error) { return 7, nil })

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, afterRan)
	require.Equal(t, 1, logs.FilterMessage("interceptor hook panicked").Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "bad hook")
}

func TestChain_Nil(t *testing.T) {
	t.Parallel()
	var chain *Chain[int, int]
	assert.Equal(t, 0, chain.Len())

	v, err := Invoke(context.Background(), chain, &Call[int, int]{},
		func(context.Context, *Call[int, int]) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFirstEnter_OnlyOutermost(t *testing.T) {
	t.Parallel()
	var before, after int
	inner := Funcs[int, int]{
		BeforeFunc: func(*Call[int, int], *callctx.Context) { before++ },
		AfterFunc:  func(*Call[int, int], *callctx.Context) { after++ },
	}
	token := callctx.NewToken("nested")
	chain := NewChain[int, int](nil, FirstEnter[int, int](token, inner))

	var op Operation[int, int]
	op = func(ctx context.Context, call *Call[int, int]) (int, error) {
		if call.Args == 0 {
			return 0, nil
		}
		return Invoke(ctx, chain, &Call[int, int]{Args: call.Args - 1}, op)
	}
	_, err := Invoke(context.Background(), chain, &Call[int, int]{Args: 3}, op)

	require.NoError(t, err)
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)
}

func TestInvoke_PanicPropagates(t *testing.T) {
	t.Parallel()
	var seen error
	chain := NewChain[int, int](nil, Funcs[int, int]{
		AfterFunc: func(call *Call[int, int], _ *callctx.Context) { seen = call.Err },
	})

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = Invoke(context.Background(), chain, &Call[int, int]{},
			func(context.Context, *Call[int, int]) (int, error) { panic("kaboom") })
	})
	assert.ErrorIs(t, seen, ErrOperationPanic)
}

func TestTracing_SyncCall(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	var observed []observability.OperationContext
	obs := observability.ObserverFunc(func(op observability.OperationContext) { observed = append(observed, op) })
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{rw: header.NewRewriter()}, WithObserver(obs)))

	req := newFakeReq()
	var sentTraceparent string
	resp, err := Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Method: req.Method, Args: req},
		func(ctx context.Context, call *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
			sentTraceparent = call.Args.Header.Get("traceparent")
			assert.True(t, trace.SpanContextFromContext(ctx).IsValid(), "operation runs under the call's span")
			return &fakeResp{code: 201}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 201, resp.code)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET http://svc/orders", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.Contains(t, sentTraceparent, ended[0].SpanContext().TraceID().String())

	require.Len(t, observed, 1)
	assert.Equal(t, "fake", observed[0].Component)
	assert.Equal(t, http.MethodGet, observed[0].Operation)
	assert.Equal(t, 201, observed[0].StatusCode)
	assert.NotEmpty(t, observed[0].AttemptID)
}

func TestTracing_ErrorPropagatesUnchanged(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{}))
	boom := errors.New("dial tcp 10.0.0.1:443: connection refused")

	resp, err := Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()},
		func(context.Context, *Call[*fakeReq, *fakeResp]) (*fakeResp, error) { return nil, boom })

	assert.Nil(t, resp)
	assert.Same(t, boom, err)
	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, boom.Error(), ended[0].Status().Description)
}

func TestTracing_NestedHostsProduceOneSpan(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	token := callctx.NewToken("http")
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{}, WithToken(token)))

	var depth int
	var op Operation[*fakeReq, *fakeResp]
	op = func(ctx context.Context, call *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
		depth++
		if depth < 3 {
			return Invoke(ctx, chain, &Call[*fakeReq, *fakeResp]{Args: call.Args}, op)
		}
		cctx, ok := callctx.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, 3, cctx.Count(token))
		return &fakeResp{code: 200}, nil
	}
	_, err := Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()}, op)

	require.NoError(t, err)
	assert.Len(t, sr.Started(), 1)
	assert.Len(t, sr.Ended(), 1)
}

func TestTracing_SequentialCallsAreSeparateAttempts(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{}))
	parent := context.Background()

	for i := 0; i < 2; i++ {
		_, err := Invoke(parent, chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()},
			func(context.Context, *Call[*fakeReq, *fakeResp]) (*fakeResp, error) { return &fakeResp{code: 200}, nil })
		require.NoError(t, err)
	}

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.NotEqual(t, attemptID(ended[0]), attemptID(ended[1]))
	assert.NotEqual(t, ended[0].SpanContext().TraceID(), ended[1].SpanContext().TraceID())
}

func TestTracing_MissingHeaderCapabilityDegrades(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	log, logs := newLogger()
	chain := NewChain[*opaqueReq, *fakeResp](log, NewTracing[*opaqueReq, *fakeResp](tc, opaqueAdapter{}, WithLogger(log)))

	resp, err := Invoke(context.Background(), chain, &Call[*opaqueReq, *fakeResp]{Args: &opaqueReq{method: "PUT"}},
		func(context.Context, *Call[*opaqueReq, *fakeResp]) (*fakeResp, error) {
			return &fakeResp{code: 204}, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 204, resp.code)
	require.Len(t, sr.Ended(), 1)
	warn := logs.FilterMessage("trace headers will not be propagated")
	require.Equal(t, 1, warn.Len())
	assert.Contains(t, warn.All()[0].ContextMap()["error"], "no rewritable header storage")
}

func TestTracing_AsyncCompletion(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	done := make(chan observability.OperationContext, 1)
	obs := observability.ObserverFunc(func(op observability.OperationContext) { done <- op })
	chain := NewChain[*asyncArgs, *fakeResp](nil, NewTracing[*asyncArgs, *fakeResp](tc, asyncAdapter{}, WithObserver(obs)))

	fut := forwardlock.NewFuture[*fakeResp]()
	args := &asyncArgs{Req: newFakeReq(), Future: fut}
	var completedAt atomic.Int64

	ret, err := Invoke(context.Background(), chain, &Call[*asyncArgs, *fakeResp]{Method: "produce", Args: args},
		func(context.Context, *Call[*asyncArgs, *fakeResp]) (*fakeResp, error) {
			go func() {
				time.Sleep(50 * time.Millisecond)
				completedAt.Store(time.Now().UnixNano())
				fut.Complete(&fakeResp{code: 200}, nil)
			}()
			return nil, nil
		})

	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.Empty(t, sr.Ended(), "span stays open until the completion arrives")

	var op observability.OperationContext
	select {
	case op = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async completion was not traced")
	}

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "publish", ended[0].Name())
	assert.GreaterOrEqual(t, ended[0].EndTime().UnixNano(), completedAt.Load())
	assert.GreaterOrEqual(t, ended[0].EndTime().Sub(ended[0].StartTime()), 50*time.Millisecond)
	assert.Equal(t, 200, op.StatusCode)
	assert.GreaterOrEqual(t, op.Duration, 50*time.Millisecond)

	fut.Complete(&fakeResp{code: 500}, nil)
	assert.Len(t, sr.Ended(), 1)
}

func TestTracing_AsyncFailedBeforeHandOff(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	chain := NewChain[*asyncArgs, *fakeResp](nil, NewTracing[*asyncArgs, *fakeResp](tc, asyncAdapter{}))
	closed := errors.New("kafka: writer closed")

	_, err := Invoke(context.Background(), chain, &Call[*asyncArgs, *fakeResp]{Args: &asyncArgs{Req: newFakeReq(), Future: forwardlock.NewFuture[*fakeResp]()}},
		func(context.Context, *Call[*asyncArgs, *fakeResp]) (*fakeResp, error) { return nil, closed })

	assert.ErrorIs(t, err, closed)
	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestTracing_ConcurrentAttempts(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()},
				func(context.Context, *Call[*fakeReq, *fakeResp]) (*fakeResp, error) { return &fakeResp{code: 200}, nil })
		}()
	}
	wg.Wait()

	assert.Len(t, sr.Ended(), 16)
}

func TestTracing_ContextOfFinishedCallStartsNewAttempt(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{rw: header.NewRewriter()}))

	// ctx escapes the first call the way resp.Request.Context() does.
	var escaped context.Context
	_, err := Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()},
		func(ctx context.Context, call *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
			escaped = ctx
			return &fakeResp{code: 200}, nil
		})
	require.NoError(t, err)

	req := newFakeReq()
	_, err = Invoke(escaped, chain, &Call[*fakeReq, *fakeResp]{Args: req},
		func(context.Context, *Call[*fakeReq, *fakeResp]) (*fakeResp, error) { return &fakeResp{code: 200}, nil })
	require.NoError(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.NotEqual(t, attemptID(ended[0]), attemptID(ended[1]))
	assert.Contains(t, req.Header.Get("traceparent"), ended[1].SpanContext().SpanID().String())
}

func TestTracing_ConcurrentCallsFromFinishedCallContext(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{rw: header.NewRewriter()}))

	var parent context.Context
	_, err := Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()},
		func(ctx context.Context, call *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
			parent = ctx
			return &fakeResp{code: 200}, nil
		})
	require.NoError(t, err)

	const n = 50
	reqs := make([]*fakeReq, n)
	var wg sync.WaitGroup
	for i := range reqs {
		reqs[i] = newFakeReq()
		wg.Add(1)
		go func(req *fakeReq) {
			defer wg.Done()
			_, _ = Invoke(parent, chain, &Call[*fakeReq, *fakeResp]{Args: req},
				func(context.Context, *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
					time.Sleep(time.Millisecond)
					return &fakeResp{code: 200}, nil
				})
		}(reqs[i])
	}
	wg.Wait()

	assert.Len(t, sr.Ended(), n+1)
	seen := map[string]bool{}
	for _, req := range reqs {
		tp := req.Header.Get("traceparent")
		require.NotEmpty(t, tp)
		seen[tp] = true
	}
	assert.Len(t, seen, n)
}

func TestTracing_HostNestedInOperationJoinsAttempt(t *testing.T) {
	t.Parallel()
	tc, sr := newTracer(t)
	token := callctx.NewToken("http")
	chain := NewChain[*fakeReq, *fakeResp](nil, NewTracing[*fakeReq, *fakeResp](tc, syncAdapter{}, WithToken(token)))

	var outer, inner *callctx.Context
	_, err := Invoke(context.Background(), chain, &Call[*fakeReq, *fakeResp]{Args: newFakeReq()},
		func(ctx context.Context, call *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
			outer, _ = callctx.FromContext(ctx)
			return Invoke(ctx, chain, &Call[*fakeReq, *fakeResp]{Args: call.Args},
				func(ctx context.Context, _ *Call[*fakeReq, *fakeResp]) (*fakeResp, error) {
					inner, _ = callctx.FromContext(ctx)
					return &fakeResp{code: 200}, nil
				})
		})

	require.NoError(t, err)
	assert.Same(t, outer, inner)
	assert.False(t, outer.Running())
	assert.Len(t, sr.Ended(), 1)
}
