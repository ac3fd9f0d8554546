package observability

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

// ObserveOperation does nothing.
func (n *NoOpObserver) ObserveOperation(ctx OperationContext) {}

// NewNoOpObserver creates a new NoOpObserver.
func NewNoOpObserver() Observer {
	return &NoOpObserver{}
}

// multiObserver fans an operation out to several observers.
type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}

// Multi returns an Observer that notifies each non-nil observer in order.
// It returns nil when no observer is left, so callers can keep treating a nil
// Observer as "not observed".
func Multi(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	default:
		return m
	}
}
