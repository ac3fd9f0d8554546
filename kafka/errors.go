package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
)

// Errors returned by TranslateError. The translated error wraps both the
// sentinel and the original error, so errors.Is works for either.
var (
	ErrConnectionFailed             = errors.New("connection failed")
	ErrConnectionLost               = errors.New("connection lost")
	ErrBrokerNotAvailable           = errors.New("broker not available")
	ErrReplicaNotAvailable          = errors.New("replica not available")
	ErrAuthenticationFailed         = errors.New("authentication failed")
	ErrAuthorizationFailed          = errors.New("authorization failed")
	ErrTopicNotFound                = errors.New("topic not found")
	ErrTopicAlreadyExists           = errors.New("topic already exists")
	ErrInvalidTopic                 = errors.New("invalid topic")
	ErrGroupCoordinatorNotAvailable = errors.New("group coordinator not available")
	ErrNotGroupCoordinator          = errors.New("not group coordinator")
	ErrUnknownMemberID              = errors.New("unknown member id")
	ErrRebalanceInProgress          = errors.New("rebalance in progress")
	ErrOffsetOutOfRange             = errors.New("offset out of range")
	ErrMessageTooLarge              = errors.New("message too large")
	ErrLeaderNotAvailable           = errors.New("leader not available")
	ErrNotLeaderForPartition        = errors.New("not leader for partition")
	ErrNotEnoughReplicas            = errors.New("not enough replicas")
	ErrRequestTimedOut              = errors.New("request timed out")
	ErrNetworkError                 = errors.New("network error")
)

// Errors returned by the client itself.
var (
	ErrWriterNotInitialized     = errors.New("kafka: writer not initialized")
	ErrReaderNotInitialized     = errors.New("kafka: reader not initialized")
	ErrNoSerializer             = errors.New("kafka: cannot publish non-[]byte data without a serializer")
	ErrUnsupportedSASLMechanism = errors.New("kafka: unsupported SASL mechanism")
)

var protocolErrors = map[kafka.Error]error{
	kafka.UnknownTopicOrPartition:      ErrTopicNotFound,
	kafka.InvalidTopic:                 ErrInvalidTopic,
	kafka.TopicAlreadyExists:           ErrTopicAlreadyExists,
	kafka.LeaderNotAvailable:           ErrLeaderNotAvailable,
	kafka.NotLeaderForPartition:        ErrNotLeaderForPartition,
	kafka.RequestTimedOut:              ErrRequestTimedOut,
	kafka.BrokerNotAvailable:           ErrBrokerNotAvailable,
	kafka.ReplicaNotAvailable:          ErrReplicaNotAvailable,
	kafka.NotEnoughReplicas:            ErrNotEnoughReplicas,
	kafka.MessageSizeTooLarge:          ErrMessageTooLarge,
	kafka.OffsetOutOfRange:             ErrOffsetOutOfRange,
	kafka.NetworkException:             ErrNetworkError,
	kafka.GroupCoordinatorNotAvailable: ErrGroupCoordinatorNotAvailable,
	kafka.NotCoordinatorForGroup:       ErrNotGroupCoordinator,
	kafka.UnknownMemberId:              ErrUnknownMemberID,
	kafka.RebalanceInProgress:          ErrRebalanceInProgress,
	kafka.TopicAuthorizationFailed:     ErrAuthorizationFailed,
	kafka.GroupAuthorizationFailed:     ErrAuthorizationFailed,
	kafka.SASLAuthenticationFailed:     ErrAuthenticationFailed,
}

var messagePatterns = []struct {
	pattern string
	err     error
}{
	{"connection refused", ErrConnectionFailed},
	{"connection reset", ErrConnectionLost},
	{"connection closed", ErrConnectionLost},
	{"broken pipe", ErrConnectionLost},
	{"sasl authentication failed", ErrAuthenticationFailed},
	{"authentication failed", ErrAuthenticationFailed},
	{"unknown topic", ErrTopicNotFound},
	{"message too large", ErrMessageTooLarge},
	{"i/o timeout", ErrNetworkError},
	{"dial", ErrNetworkError},
	{"timed out", ErrRequestTimedOut},
}

// TranslateError maps err to one of the sentinel errors of this package.
// Kafka protocol errors are matched by code, other errors by message.
// Unknown errors and context errors are returned unchanged.
func (k *KafkaClient) TranslateError(err error) error {
	return translateError(err)
}

func translateError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var we kafka.WriteErrors
	if errors.As(err, &we) {
		for _, e := range we {
			if e != nil {
				return translateError(e)
			}
		}
	}

	var ke kafka.Error
	if errors.As(err, &ke) {
		if sentinel, ok := protocolErrors[ke]; ok {
			return fmt.Errorf("%w: %w", sentinel, err)
		}
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, p := range messagePatterns {
		if strings.Contains(msg, p.pattern) {
			return fmt.Errorf("%w: %w", p.err, err)
		}
	}
	return err
}

// IsRetryableError reports whether a produce or fetch that failed with err may succeed when retried.
func (k *KafkaClient) IsRetryableError(err error) bool {
	var ke kafka.Error
	if errors.As(err, &ke) && ke.Temporary() {
		return true
	}
	err = translateError(err)
	for _, target := range []error{
		ErrConnectionFailed,
		ErrConnectionLost,
		ErrBrokerNotAvailable,
		ErrReplicaNotAvailable,
		ErrLeaderNotAvailable,
		ErrNotLeaderForPartition,
		ErrNotEnoughReplicas,
		ErrRequestTimedOut,
		ErrNetworkError,
		ErrGroupCoordinatorNotAvailable,
		ErrNotGroupCoordinator,
		ErrRebalanceInProgress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthenticationError reports whether err is an authentication or authorization failure.
func (k *KafkaClient) IsAuthenticationError(err error) bool {
	err = translateError(err)
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrAuthorizationFailed)
}
