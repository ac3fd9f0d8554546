package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/aalemi-dev/calltrace/callctx"
	"github.com/aalemi-dev/calltrace/forwardlock"
	"github.com/aalemi-dev/calltrace/interceptor"
	"github.com/aalemi-dev/calltrace/observability"
	"github.com/aalemi-dev/calltrace/tracer"
	"github.com/aalemi-dev/calltrace/view"
)

// ConsumerMessage implements the Message interface and wraps a Kafka message.
type ConsumerMessage struct {
	message      kafka.Message
	reader       messageReader
	deserializer Deserializer
	ctx          context.Context
}

// Consume starts consuming messages from the topic specified in the configuration.
//
// Example:
//
//	wg := &sync.WaitGroup{}
//	for msg := range kafkaClient.Consume(ctx, wg) {
//	    ctx, span := tracerClient.StartSpan(msg.Context(), "handle-order")
//	    var event OrderEvent
//	    if err := msg.BodyAs(&event); err != nil {
//	        span.RecordError(err)
//	    }
//	    span.End()
//	    _ = msg.CommitMsg()
//	}
func (k *KafkaClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message {
	return k.ConsumeParallel(ctx, wg, 1)
}

// ConsumeParallel starts consuming messages with numWorkers concurrent goroutines.
// The returned channel is closed when every worker stopped.
func (k *KafkaClient) ConsumeParallel(ctx context.Context, wg *sync.WaitGroup, numWorkers int) <-chan Message {
	if numWorkers < 1 {
		numWorkers = 1
	}

	outChan := make(chan Message, 100*numWorkers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(outChan)

		workerWg := &sync.WaitGroup{}
		for i := 0; i < numWorkers; i++ {
			workerWg.Add(1)
			go func(workerID int) {
				defer workerWg.Done()
				k.consumeWorker(ctx, outChan, workerID)
			}(i)
		}
		workerWg.Wait()
	}()

	return outChan
}

func (k *KafkaClient) consumeWorker(ctx context.Context, outChan chan<- Message, workerID int) {
	for {
		select {
		case <-k.shutdownSignal:
			k.logInfo(ctx, "Stopping consumer worker due to shutdown signal", map[string]interface{}{
				"worker_id": workerID,
			})
			return
		case <-ctx.Done():
			k.logInfo(ctx, "Stopping consumer worker due to context cancellation", map[string]interface{}{
				"worker_id": workerID,
				"error":     ctx.Err().Error(),
			})
			return
		default:
		}

		k.mu.RLock()
		reader := k.reader
		deserializer := k.deserializer
		k.mu.RUnlock()

		if reader == nil {
			k.logError(ctx, "Kafka reader is not initialized", ErrReaderNotInitialized, map[string]interface{}{
				"worker_id": workerID,
			})
			return
		}

		start := time.Now()
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			k.observeConsume(msg, time.Since(start), err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				k.logInfo(ctx, "Consumer worker context cancelled", map[string]interface{}{
					"worker_id": workerID,
					"error":     err.Error(),
				})
				return
			}
			k.logError(ctx, "Worker failed to fetch message", err, map[string]interface{}{
				"worker_id": workerID,
			})
			continue
		}

		cm := &ConsumerMessage{
			message:      msg,
			reader:       reader,
			deserializer: deserializer,
		}
		cm.ctx = k.traceDelivery(ctx, &cm.message, start)

		select {
		case outChan <- cm:
		case <-ctx.Done():
			return
		case <-k.shutdownSignal:
			return
		}
	}
}

// traceDelivery records the delivery of msg as a server span parented on the
// trace context found in its headers and returns the context carrying it.
func (k *KafkaClient) traceDelivery(ctx context.Context, msg *kafka.Message, start time.Time) context.Context {
	topic := messageTopic(msg, k.cfg.Topic)
	req, err := view.NewRequest(msg, consumeRequestEx(topic), k.rw)
	if err != nil {
		k.logWarn(ctx, "trace headers of consumed message are unreadable", err, map[string]interface{}{
			"topic": topic,
		})
	}

	parent := k.tracer.Extract(ctx, req)
	cctx := callctx.New(parent)
	pc := k.tracer.NextProgress(cctx, req, topic+" process")
	defer pc.Scope().Close()
	pc.Span().Tag(tracer.TagMessagingSystem, Component)
	pc.Span().Tag(tracer.TagMessagingDestination, topic)
	pc.Span().SetAttributes(map[string]interface{}{
		tracer.TagKafkaPartition: msg.Partition,
		tracer.TagKafkaOffset:    msg.Offset,
	})
	pc.Finish(view.NewResponse(msg, Delivery{}, nil, view.ResponseExtractor[*kafka.Message, Delivery]{}))

	k.observeConsume(*msg, time.Since(start), nil, cctx.ID())

	// The returned context carries the span but not the finished attempt.
	return trace.ContextWithSpan(parent, trace.SpanFromContext(pc.Context()))
}

// Publish sends a message to the configured topic and waits until the writer
// reported its delivery or ctx is done.
//
// The trace context of ctx is injected into the message headers next to the
// optional headers:
//
//	err := kafkaClient.Publish(ctx, "order-42", order, map[string]interface{}{"tenant": "acme"})
func (k *KafkaClient) Publish(ctx context.Context, key string, data interface{}, headers ...map[string]interface{}) error {
	future, err := k.PublishAsync(ctx, key, data, headers...)
	if err != nil {
		return err
	}
	_, err = future.Await(ctx)
	return err
}

// PublishAsync hands a message to the writer and returns a future resolving
// with its delivery. The span of the produce call finishes when the future
// resolves, on the writer's goroutine.
//
// A non-nil error means the message was never handed to the writer; the
// returned future, if any, is already resolved with the same error.
func (k *KafkaClient) PublishAsync(ctx context.Context, key string, data interface{}, headers ...map[string]interface{}) (*forwardlock.Future[Delivery], error) {
	msg, err := k.buildMessage(key, data, headers...)
	if err != nil {
		return nil, err
	}

	future := forwardlock.NewFuture[Delivery]()
	msg.WriterData = future

	call := &produceCall{
		Method: "publish",
		Args:   &ProduceArgs{Message: msg, Future: future},
	}
	_, err = interceptor.Invoke(ctx, k.produceChain(), call, k.produce)
	return future, err
}

// produce writes the message. Errors returned before the writer accepted the
// message resolve the future here; the completion callback never sees them.
func (k *KafkaClient) produce(ctx context.Context, call *produceCall) (Delivery, error) {
	args := call.Args
	fail := func(err error) (Delivery, error) {
		args.Future.Complete(Delivery{}, err)
		return Delivery{}, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	k.mu.RLock()
	writer := k.writer
	k.mu.RUnlock()
	if writer == nil {
		return fail(ErrWriterNotInitialized)
	}

	if err := writer.WriteMessages(ctx, *args.Message); err != nil {
		return fail(err)
	}
	return Delivery{Topic: messageTopic(args.Message, k.cfg.Topic), Key: string(args.Message.Key)}, nil
}

// onCompletion is the writer's completion callback. It resolves the future
// carried by every reported message with the unchanged write error.
func (k *KafkaClient) onCompletion(messages []kafka.Message, err error) {
	for i := range messages {
		m := &messages[i]
		future, ok := m.WriterData.(*forwardlock.Future[Delivery])
		if !ok {
			continue
		}
		future.Complete(Delivery{
			Topic:     messageTopic(m, k.cfg.Topic),
			Partition: m.Partition,
			Offset:    m.Offset,
			Key:       string(m.Key),
		}, err)
	}
	if err != nil {
		k.logError(context.Background(), "Kafka batch delivery failed", err, map[string]interface{}{
			"topic":    k.cfg.Topic,
			"messages": len(messages),
		})
	}
}

func (k *KafkaClient) buildMessage(key string, data interface{}, headers ...map[string]interface{}) (*kafka.Message, error) {
	k.mu.RLock()
	serializer := k.serializer
	k.mu.RUnlock()

	value, ok := data.([]byte)
	if !ok {
		if serializer == nil {
			return nil, fmt.Errorf("%w, got type %T", ErrNoSerializer, data)
		}
		var err error
		if value, err = serializer.Serialize(data); err != nil {
			return nil, fmt.Errorf("failed to serialize message: %w", err)
		}
	}

	msg := &kafka.Message{Key: []byte(key), Value: value}
	if len(headers) > 0 && len(headers[0]) > 0 {
		values := make(map[string][]string, len(headers[0]))
		for hk, hv := range headers[0] {
			values[hk] = []string{headerString(hv)}
		}
		writeHeaders(msg, values)
	}
	return msg, nil
}

func headerString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (k *KafkaClient) observeConsume(msg kafka.Message, d time.Duration, err error, attemptID ...string) {
	k.mu.RLock()
	observer := k.observer
	k.mu.RUnlock()
	if observer == nil {
		return
	}
	op := observability.OperationContext{
		Component: Component,
		Operation: "consume",
		Resource:  k.cfg.Topic,
		Duration:  d,
		Error:     err,
	}
	if err == nil {
		op.SubResource = strconv.Itoa(msg.Partition)
		op.Size = int64(len(msg.Value))
		op.Metadata = map[string]interface{}{"offset": msg.Offset}
	}
	if len(attemptID) > 0 {
		op.AttemptID = attemptID[0]
	}
	observer.ObserveOperation(op)
}

// CommitMsg commits the message offset.
func (cm *ConsumerMessage) CommitMsg() error {
	return cm.reader.CommitMessages(context.Background(), cm.message)
}

// Context returns the context carrying the delivery span.
func (cm *ConsumerMessage) Context() context.Context {
	if cm.ctx == nil {
		return context.Background()
	}
	return cm.ctx
}

// Body returns the message payload as a byte slice.
func (cm *ConsumerMessage) Body() []byte {
	return cm.message.Value
}

// BodyAs deserializes the message body into target with the configured
// Deserializer, or JSONDeserializer when none is configured.
func (cm *ConsumerMessage) BodyAs(target interface{}) error {
	deserializer := cm.deserializer
	if deserializer == nil {
		deserializer = &JSONDeserializer{}
	}
	return deserializer.Deserialize(cm.message.Value, target)
}

// Key returns the message key as a string.
func (cm *ConsumerMessage) Key() string {
	return string(cm.message.Key)
}

// Header returns the headers associated with the message, trace headers included.
func (cm *ConsumerMessage) Header() map[string]interface{} {
	headers := make(map[string]interface{}, len(cm.message.Headers))
	for _, h := range cm.message.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}

// Partition returns the partition this message came from.
func (cm *ConsumerMessage) Partition() int {
	return cm.message.Partition
}

// Offset returns the offset of this message.
func (cm *ConsumerMessage) Offset() int64 {
	return cm.message.Offset
}

// Deserialize decodes the body of msg into target with the configured
// Deserializer, or JSONDeserializer when none is configured.
func (k *KafkaClient) Deserialize(msg Message, target interface{}) error {
	k.mu.RLock()
	deserializer := k.deserializer
	k.mu.RUnlock()

	if deserializer == nil {
		deserializer = &JSONDeserializer{}
	}
	return deserializer.Deserialize(msg.Body(), target)
}
