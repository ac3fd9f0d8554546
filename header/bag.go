package header

import (
	"net/textproto"
	"sort"
)

// Bag is a mutable, multi-valued header store.
type Bag struct {
	values    map[string][]string
	canonical bool
	onChange  func(map[string][]string)
}

// BagOption configures a Bag.
type BagOption func(*Bag)

// WithCanonicalKeys stores keys in MIME canonical form, as net/http does.
func WithCanonicalKeys() BagOption {
	return func(b *Bag) { b.canonical = true }
}

// WithWriteThrough calls fn with the current values after every mutation.
// Sinks for libraries that keep headers in a slice use it to mirror the Bag
// back into the request.
func WithWriteThrough(fn func(map[string][]string)) BagOption {
	return func(b *Bag) { b.onChange = fn }
}

// NewBag returns a Bag seeded with a copy of initial.
func NewBag(initial map[string][]string, opts ...BagOption) *Bag {
	b := &Bag{values: make(map[string][]string, len(initial))}
	for _, opt := range opts {
		opt(b)
	}
	for k, vs := range initial {
		k = b.key(k)
		b.values[k] = append(b.values[k], vs...)
	}
	return b
}

func (b *Bag) key(name string) string {
	if b.canonical {
		return textproto.CanonicalMIMEHeaderKey(name)
	}
	return name
}

func (b *Bag) changed() {
	if b.onChange != nil {
		b.onChange(b.values)
	}
}

// Get returns the first value of name, or "".
func (b *Bag) Get(name string) string {
	if vs := b.values[b.key(name)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns all values of name.
func (b *Bag) Values(name string) []string {
	return b.values[b.key(name)]
}

// Add appends value to name.
func (b *Bag) Add(name, value string) {
	k := b.key(name)
	b.values[k] = append(b.values[k], value)
	b.changed()
}

// Set replaces the values of name with value.
func (b *Bag) Set(name, value string) {
	b.values[b.key(name)] = []string{value}
	b.changed()
}

// Del removes name.
func (b *Bag) Del(name string) {
	delete(b.values, b.key(name))
	b.changed()
}

// Keys returns the header names in sorted order.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of header names.
func (b *Bag) Len() int {
	return len(b.values)
}

// Map returns the live backing map. Sinks that can hold a map install it directly.
func (b *Bag) Map() map[string][]string {
	return b.values
}
