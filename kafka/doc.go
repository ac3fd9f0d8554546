// Package kafka publishes and consumes Apache Kafka messages with
// segmentio/kafka-go and traces every message end to end.
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" Go idiom:
//   - Client interface: the contract for Kafka operations
//   - KafkaClient struct: the concrete implementation returned by NewClient
//   - Message interface: a consumed message
//   - FX module provides both *KafkaClient and Client
//
// # Publishing
//
// Every produced message is an intercepted call. Its span is opened when the
// message is handed to the writer and its trace context is written into the
// message headers:
//
//	client, err := kafka.NewClient(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topic:   "orders",
//		Async:   true,
//	}, tracerClient)
//	if err != nil {
//		return err
//	}
//	defer client.GracefulShutdown()
//
//	future, err := client.PublishAsync(ctx, "order-42", order)
//	if err != nil {
//		return err
//	}
//	delivery, err := future.Await(ctx)
//
// With Config.Async the writer acknowledges deliveries on its own goroutine
// through the completion callback. The callback resolves the future attached
// to each message, and the span finishes at that moment, exactly once. Publish
// is PublishAsync followed by Await.
//
// # Consuming
//
// Consumed messages carry the delivery span in Message.Context(). It is a
// server span parented on the producer's span, so a handler's spans join the
// producer's trace:
//
//	wg := &sync.WaitGroup{}
//	for msg := range client.ConsumeParallel(ctx, wg, 4) {
//		ctx, span := tracerClient.StartSpan(msg.Context(), "handle-order")
//		var order Order
//		if err := msg.BodyAs(&order); err != nil {
//			span.RecordError(err)
//		}
//		span.End()
//		_ = msg.CommitMsg()
//	}
//
// # Serialization
//
// Config.DataType selects the default serializer pair: "json" (default),
// "string", "gob" or "bytes". []byte payloads are always published unchanged.
//
// # Errors
//
// TranslateError maps kafka-go protocol errors and common network failures to
// the sentinel errors of this package; IsRetryableError and
// IsAuthenticationError classify them. Errors returned by Publish and
// recorded on spans are never translated.
package kafka
