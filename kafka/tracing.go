package kafka

import (
	"sort"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/aalemi-dev/calltrace/forwardlock"
	"github.com/aalemi-dev/calltrace/header"
	"github.com/aalemi-dev/calltrace/interceptor"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/view"
)

// Component is the component name of Kafka spans and observed operations.
const Component = "kafka"

// Delivery is the acknowledged outcome of a produced message.
type Delivery struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
}

// ProduceArgs are the arguments of an intercepted produce call.
type ProduceArgs struct {
	Message *kafka.Message
	// Future resolves when the writer reports the delivery of Message.
	Future *forwardlock.Future[Delivery]
}

type produceCall = interceptor.Call[*ProduceArgs, Delivery]

// RegisterSinks registers the header sink of *kafka.Message with rw.
// kafka-go keeps headers in a slice, so the sink mirrors every header change
// back into Message.Headers.
func RegisterSinks(rw *header.Rewriter) {
	header.Register(rw, header.Sink[*kafka.Message]{
		Read:         readHeaders,
		WriteThrough: writeHeaders,
	})
}

func readHeaders(m *kafka.Message) map[string][]string {
	if len(m.Headers) == 0 {
		return nil
	}
	values := make(map[string][]string, len(m.Headers))
	for _, h := range m.Headers {
		values[h.Key] = append(values[h.Key], string(h.Value))
	}
	return values
}

func writeHeaders(m *kafka.Message, values map[string][]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafka.Header, 0, len(values))
	for _, k := range keys {
		for _, v := range values[k] {
			headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
		}
	}
	m.Headers = headers
}

func messageTopic(m *kafka.Message, fallback string) string {
	if m != nil && m.Topic != "" {
		return m.Topic
	}
	return fallback
}

// produceAdapter traces produce calls. A call whose args carry a Future
// finishes its span when the future resolves.
type produceAdapter struct {
	rw    *header.Rewriter
	topic string
	async bool
}

func (a produceAdapter) requestEx() view.RequestExtractor[*kafka.Message] {
	return view.RequestExtractor[*kafka.Message]{
		Kind:   view.KindClient,
		Method: func(*kafka.Message) string { return "publish" },
		Path:   func(m *kafka.Message) string { return messageTopic(m, a.topic) },
	}
}

var produceResponseEx = view.ResponseExtractor[*kafka.Message, Delivery]{
	Method: func(*kafka.Message) string { return "publish" },
}

func (produceAdapter) Component() string { return Component }

func (a produceAdapter) SpanName(call *produceCall) string {
	return messageTopic(call.Args.Message, a.topic) + " publish"
}

func (a produceAdapter) Request(call *produceCall) (view.Request, error) {
	return view.NewRequest(call.Args.Message, a.requestEx(), a.rw)
}

func (produceAdapter) Response(call *produceCall) view.Response {
	return view.NewResponse(call.Args.Message, call.Return, call.Err, produceResponseEx)
}

func (produceAdapter) HandOff(call *produceCall) bool {
	if call.Args.Future == nil {
		return false
	}
	rel := call.Release
	if !rel.Defer() {
		return false
	}
	call.Args.Future.OnComplete(rel.Complete)
	return true
}

func (a produceAdapter) Describe(call *produceCall, op *observability.OperationContext) {
	op.Resource = messageTopic(call.Args.Message, a.topic)
	if call.Args.Message != nil {
		op.Size = int64(len(call.Args.Message.Value))
	}
	op.Metadata = map[string]interface{}{"async": a.async}
	if call.Err == nil {
		op.SubResource = strconv.Itoa(call.Return.Partition)
		op.Metadata["offset"] = call.Return.Offset
	}
}

// consumeRequestEx reads consumed messages as the server side of the propagation.
func consumeRequestEx(topic string) view.RequestExtractor[*kafka.Message] {
	return view.RequestExtractor[*kafka.Message]{
		Kind:   view.KindServer,
		Method: func(*kafka.Message) string { return "process" },
		Path:   func(m *kafka.Message) string { return messageTopic(m, topic) },
	}
}
