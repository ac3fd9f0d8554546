package view

// Kind is the role of the local side of a call.
type Kind int

const (
	// KindClient is an outbound call.
	KindClient Kind = iota
	// KindServer is an inbound call.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// HeaderReader reads the first value of a header.
type HeaderReader interface {
	Header(name string) string
}

// HeaderWriter appends a header value to an outgoing request.
type HeaderWriter interface {
	SetHeader(name, value string)
}

// Request is the view of an outgoing request.
type Request interface {
	HeaderReader
	HeaderWriter

	Kind() Kind
	Method() string
	Path() string
	Route() string
}

// Response is the view of a completed call. It is built strictly after the
// real operation returned, whether it succeeded or not.
type Response interface {
	HeaderReader

	Method() string
	Route() string
	// StatusCode is 0 when the call produced no protocol response.
	StatusCode() int
	// MaybeError is the error the real operation returned, if any.
	MaybeError() error
}
