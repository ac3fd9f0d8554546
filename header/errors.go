package header

import "errors"

var (
	// ErrNoHeaderSink means the request type exposes no header storage that can be rewritten.
	ErrNoHeaderSink = errors.New("header: request type has no rewritable header storage")

	// ErrNilRequest means Rewrite was given a nil request.
	ErrNilRequest = errors.New("header: nil request")
)
