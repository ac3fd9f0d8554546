package httpclient

import "errors"

// ErrNilRequest is returned by the hosts when given a nil request.
var ErrNilRequest = errors.New("httpclient: nil request")
