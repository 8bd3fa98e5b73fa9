package endpoint

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Dispatcher resolves the handler for a record's exec mode and runs it with
// the error translation the HTTP layer relies on. It holds no per-request state.
type Dispatcher struct {
	handlers map[ExecMode]Handler
	log      *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		handlers: map[ExecMode]Handler{},
		log:      log,
	}
}

// HandleRequest validates the request against the record, switches to the
// record's exec-as identity when set, and invokes the mode handler.
// Recognized business-rule failures are logged with their cause and masked
// as a generic bad request; protocol errors pass through unchanged.
func (d *Dispatcher) HandleRequest(ctx context.Context, e *Endpoint, req *Request, params map[string]any, caller Identity) (Result, error) {
	if err := e.ValidateRequest(req); err != nil {
		d.log.Error("request validation failed",
			zap.String("endpoint", e.Route),
			zap.String("method", req.Method),
			zap.Error(err),
		)
		return Result{}, err
	}

	call := &Call{
		Endpoint: e,
		Request:  req,
		Params:   params,
		As:       runAs(e, caller),
	}

	h, err := d.handlerFor(e)
	if err != nil {
		d.log.Error("handler resolution failed",
			zap.String("endpoint", e.Route),
			zap.String("exec_mode", string(e.ExecMode)),
			zap.Error(err),
		)
		return Result{}, err
	}

	res, err := h.Handle(ctx, call)
	if err != nil {
		if IsBadRequest(err) {
			d.log.Error("endpoint handler rejected request",
				zap.String("endpoint", e.Route),
				zap.String("exec_as", call.As.Username),
				zap.Error(err),
			)
			return Result{}, ErrBadRequest()
		}
		return Result{}, err
	}
	return res, nil
}

// runAs returns the identity the call executes under. ExecAsUser overrides
// the caller for the whole handling, never by mutating the record.
func runAs(e *Endpoint, caller Identity) Identity {
	u := strings.TrimSpace(e.ExecAsUser)
	if u == "" {
		return caller
	}
	return Identity{ID: u, Username: u}
}
