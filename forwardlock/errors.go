package forwardlock

import "errors"

// ErrPending is returned by Future.Result before the future is completed.
var ErrPending = errors.New("forwardlock: future not completed")
