package header

import (
	"fmt"
	"net/http"
	"reflect"
	"sync"
)

// capability is the type-erased form of a Sink.
type capability struct {
	read         func(req any) map[string][]string
	install      func(req any, bag *Bag) error
	writeThrough func(req any, values map[string][]string)
	canonical    bool
	source       string
}

type entry struct {
	once sync.Once
	cap  *capability
}

// Rewriter negotiates and caches header capabilities per request type.
// It is safe for concurrent use.
type Rewriter struct {
	registered sync.Map // reflect.Type -> *capability
	cache      sync.Map // reflect.Type -> *entry
	logger     Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger logs capability failures through l.
func WithLogger(l Logger) Option {
	return func(rw *Rewriter) { rw.logger = l }
}

// NewRewriter returns an empty Rewriter that relies on reflective discovery
// until sinks are registered.
func NewRewriter(opts ...Option) *Rewriter {
	rw := &Rewriter{}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Default is the process-wide Rewriter used when none is configured.
var Default = NewRewriter()

// Register installs s as the capability for requests of type R, replacing any
// earlier negotiation result for that type.
func Register[R any](rw *Rewriter, s Sink[R]) {
	t := reflect.TypeFor[R]()
	c := &capability{
		canonical: s.Canonical,
		source:    "registered",
		read: func(req any) map[string][]string {
			if s.Read == nil {
				return nil
			}
			return s.Read(req.(R))
		},
		install: func(req any, bag *Bag) error {
			if s.Install == nil {
				return nil
			}
			return s.Install(req.(R), bag)
		},
	}
	if s.WriteThrough != nil {
		c.writeThrough = func(req any, values map[string][]string) {
			s.WriteThrough(req.(R), values)
		}
	}
	rw.registered.Store(t, c)
	rw.cache.Delete(t)
}

// Supports reports whether requests of req's type have a header capability.
func (rw *Rewriter) Supports(req any) bool {
	if req == nil {
		return false
	}
	return rw.resolve(reflect.TypeOf(req)) != nil
}

// Rewrite copies the headers of req into a fresh Bag and installs the Bag
// into req. On error the returned Bag is nil and req is unchanged.
//
// Parameters:
//   - req: A request whose type was registered with Register, directly or
//     through an interface it implements
//
// Returns:
//   - *Bag: The installed header bag; writes to it reach req
//   - error: ErrNilRequest, or ErrNoHeaderSink when req's type has no capability
//
// Example:
//
//	bag, err := rw.Rewrite(req)
//	if err != nil {
//	    return err
//	}
//	bag.Set("traceparent", tp)
func (rw *Rewriter) Rewrite(req any) (*Bag, error) {
	if isNil(req) {
		return nil, ErrNilRequest
	}
	t := reflect.TypeOf(req)
	c := rw.resolve(t)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoHeaderSink, t)
	}

	var opts []BagOption
	if c.canonical {
		opts = append(opts, WithCanonicalKeys())
	}
	if c.writeThrough != nil {
		opts = append(opts, WithWriteThrough(func(values map[string][]string) {
			c.writeThrough(req, values)
		}))
	}
	bag := NewBag(c.read(req), opts...)

	if err := c.install(req, bag); err != nil {
		err = fmt.Errorf("header: install into %s: %w", t, err)
		if rw.logger != nil {
			rw.logger.Debug("failed to install header bag", err, map[string]interface{}{
				"request_type": t.String(),
			})
		}
		return nil, err
	}
	return bag, nil
}

// resolve returns the capability for t, negotiating it on first use.
func (rw *Rewriter) resolve(t reflect.Type) *capability {
	v, _ := rw.cache.LoadOrStore(t, &entry{})
	e := v.(*entry)
	e.once.Do(func() {
		if c, ok := rw.registered.Load(t); ok {
			e.cap = c.(*capability)
			return
		}
		e.cap = discover(t)
		if rw.logger == nil {
			return
		}
		if e.cap != nil {
			rw.logger.Debug("header capability discovered", nil, map[string]interface{}{
				"request_type": t.String(),
				"source":       e.cap.source,
			})
			return
		}
		rw.logger.Warn("request type has no rewritable headers, trace headers will not be propagated", ErrNoHeaderSink, map[string]interface{}{
			"request_type": t.String(),
		})
	})
	return e.cap
}

var (
	httpHeaderType = reflect.TypeOf(http.Header{})
	stringsType    = reflect.TypeOf([]string{})
)

// discover looks for an exported, settable Header or Headers field holding a
// map[string][]string on a pointer to struct.
func discover(t reflect.Type) *capability {
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil
	}
	for _, name := range []string{"Header", "Headers"} {
		f, ok := t.Elem().FieldByName(name)
		if !ok || !f.IsExported() || len(f.Index) != 1 {
			continue
		}
		ft := f.Type
		if ft.Kind() != reflect.Map || ft.Key().Kind() != reflect.String || ft.Elem() != stringsType {
			continue
		}
		index := f.Index[0]
		return &capability{
			canonical: ft == httpHeaderType,
			source:    "field " + name,
			read: func(req any) map[string][]string {
				fv := reflect.ValueOf(req).Elem().Field(index)
				if fv.IsNil() {
					return nil
				}
				return fv.Convert(reflect.TypeOf(map[string][]string(nil))).Interface().(map[string][]string)
			},
			install: func(req any, bag *Bag) error {
				fv := reflect.ValueOf(req).Elem().Field(index)
				if !fv.CanSet() {
					return fmt.Errorf("field %s is not settable", name)
				}
				fv.Set(reflect.ValueOf(bag.Map()).Convert(ft))
				return nil
			},
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
