// pkg/controller/router.go
package controller

import (
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"

	"github.com/ursais/web-api/pkg/middleware/auth"
	"github.com/ursais/web-api/pkg/middleware/logger"
	hmetrics "github.com/ursais/web-api/pkg/middleware/metrics"
	httpx "github.com/ursais/web-api/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth    *auth.Middleware
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
}

// BuildRouter wires middleware, the admin API, and the dynamic catch-all.
// Dynamic endpoints own every path the built-ins do not claim.
func BuildRouter(c *Controller, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		// metrics collector that references auth state without copying it
		r.Use(hmetrics.Collect(d.Auth))
	} else {
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(nil))
		}
		r.Use(hmetrics.Collect(nil))
	}

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Get("/admin/endpoints", c.requireAdmin(c.adminList))
	r.Post("/admin/endpoints", c.requireAdmin(c.adminCreate))
	r.Get("/admin/endpoints/{id}", c.requireAdmin(c.adminGet))
	r.Put("/admin/endpoints/{id}", c.requireAdmin(c.adminUpdate))
	r.Delete("/admin/endpoints/{id}", c.requireAdmin(c.adminDelete))
	r.Post("/admin/endpoints/{id}/duplicate", c.requireAdmin(c.adminDuplicate))
	r.Get("/admin/endpoints/{id}/docs", c.requireAdmin(c.adminDocs))

	r.NotFound(http.HandlerFunc(c.ServeEndpoint))

	return r.Mux()
}
