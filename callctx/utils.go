package callctx

// Enter increments the counter of token and reports whether it now equals depth.
// With depth 1, only the outermost of several nested entries returns true.
func (c *Context) Enter(token *Token, depth int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counters[token] + 1
	c.counters[token] = n
	return n == depth
}

// Out decrements the counter of token and reports whether it now equals depth-1.
// A zero counter is left untouched and Out returns false, so an exit without a
// matching entry has no effect.
func (c *Context) Out(token *Token, depth int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.counters[token]
	if n <= 0 {
		return false
	}
	n--
	if n == 0 {
		delete(c.counters, token)
	} else {
		c.counters[token] = n
	}
	return n == depth-1
}

// Count returns the current counter of token.
func (c *Context) Count(token *Token) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[token]
}

// Set stores v under key.
func Set[T any](c *Context, key *Key[T], v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attrs[key] = v
}

// Value returns the value stored under key.
func Value[T any](c *Context, key *Key[T]) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.attrs[key].(T)
	return v, ok
}

// Delete removes key and returns the value it held.
func Delete[T any](c *Context, key *Key[T]) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.attrs[key].(T)
	delete(c.attrs, key)
	return v, ok
}
