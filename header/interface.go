package header

// Sink is the header capability of requests of type R.
type Sink[R any] struct {
	// Read returns the current headers of req. It may return nil.
	Read func(req R) map[string][]string

	// Install makes bag the header storage req will be sent with.
	Install func(req R, bag *Bag) error

	// Canonical stores keys in MIME canonical form.
	Canonical bool

	// WriteThrough, when set, is called on every Bag mutation with the current values.
	WriteThrough func(req R, values map[string][]string)
}

// Logger is the subset of logger.Logger used by the Rewriter.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}
