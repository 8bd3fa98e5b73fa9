package endpoint

import "context"

// Identity is the principal a call executes as. When a record sets
// ExecAsUser, the dispatcher swaps the caller identity for the record's one
// before the handler runs; handlers never rebind the record itself.
type Identity struct {
	ID       string
	Username string
	Role     string
}

// Call bundles everything a handler may act on for one request.
type Call struct {
	Endpoint *Endpoint
	Request  *Request
	Params   map[string]any
	As       Identity
}

// Handler services all endpoints of one exec mode.
type Handler interface {
	Mode() ExecMode
	Handle(ctx context.Context, call *Call) (Result, error)
}

// Register makes h the handler for its mode. Later registrations for the
// same mode win, which lets tests swap in fakes.
func (d *Dispatcher) Register(h Handler) {
	d.handlers[h.Mode()] = h
}

// handlerFor resolves the handler for the record's mode. A mode without a
// handler is a configuration error naming the mode.
func (d *Dispatcher) handlerFor(e *Endpoint) (Handler, error) {
	h, ok := d.handlers[e.ExecMode]
	if !ok {
		return nil, NewUserError("missing handler for exec mode %s", e.ExecMode)
	}
	return h, nil
}
