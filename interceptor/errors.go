package interceptor

import "errors"

var (
	// ErrOperationPanic is the error After sees when the real operation panicked.
	ErrOperationPanic = errors.New("interceptor: intercepted operation panicked")

	// ErrInterceptorPanic is logged when an interceptor hook panics. The call proceeds.
	ErrInterceptorPanic = errors.New("interceptor: hook panicked")
)
