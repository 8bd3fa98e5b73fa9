// Package controller serves the dynamic endpoint records over HTTP and
// exposes the admin CRUD API for managing them.
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ursais/web-api/pkg/endpoint"
	"github.com/ursais/web-api/pkg/endpoint/store"
	"github.com/ursais/web-api/pkg/middleware/auth"
	"github.com/ursais/web-api/pkg/middleware/metrics"
)

type Controller struct {
	repo store.Repository
	disp *endpoint.Dispatcher
	auth *auth.Middleware
	log  *zap.Logger
}

func New(repo store.Repository, disp *endpoint.Dispatcher, am *auth.Middleware, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{repo: repo, disp: disp, auth: am, log: log}
}

// ServeEndpoint is the catch-all handler: every path that is not a
// built-in route is looked up in the endpoint registry.
func (c *Controller) ServeEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ep, err := c.repo.FindByRoute(ctx, r.URL.Path)
	if err != nil {
		c.log.Error("endpoint lookup failed", zap.String("route", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if ep == nil {
		http.NotFound(w, r)
		return
	}

	if ep.AuthType == endpoint.AuthUser {
		if c.auth == nil || !c.auth.IsAuthenticated(ctx) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	req := endpoint.NewRequest(r)
	res, err := c.disp.HandleRequest(ctx, ep, req, callParams(req), c.caller(r))
	metrics.CountExecution(ep.Route, err == nil)
	if err != nil {
		c.writeError(w, ep, err)
		return
	}
	writeResult(w, res)
}

func (c *Controller) caller(r *http.Request) endpoint.Identity {
	if c.auth == nil {
		return endpoint.Identity{}
	}
	u := c.auth.GetUser(r.Context())
	return endpoint.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (c *Controller) writeError(w http.ResponseWriter, ep *endpoint.Endpoint, err error) {
	var httpErr *endpoint.HTTPError
	if errors.As(err, &httpErr) {
		http.Error(w, httpErr.Error(), httpErr.Status)
		return
	}
	// Anything else is a server-side failure; details stay in the log.
	c.log.Error("endpoint execution failed", zap.String("route", ep.Route), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// callParams merges query parameters with the keys of a JSON object body.
// Body keys win on conflict.
func callParams(req *endpoint.Request) map[string]any {
	params := map[string]any{}
	for k, v := range req.Query {
		params[k] = v
	}
	if req.ContentType == "application/json" && len(req.Body) > 0 {
		var body map[string]any
		if json.Unmarshal(req.Body, &body) == nil {
			for k, v := range body {
				params[k] = v
			}
		}
	}
	return params
}

func writeResult(w http.ResponseWriter, res endpoint.Result) {
	for k, v := range res.Headers {
		w.Header().Set(k, v)
	}
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	switch payload := res.Payload.(type) {
	case nil:
		w.WriteHeader(status)
	case string:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	case []byte:
		w.WriteHeader(status)
		_, _ = w.Write(payload)
	default:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}
