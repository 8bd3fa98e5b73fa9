package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ursais/web-api/pkg/codec"
	"github.com/ursais/web-api/pkg/endpoint"
	"github.com/ursais/web-api/pkg/endpoint/store"
)

// requireAdmin guards the admin API. Without an auth middleware wired the
// whole surface is closed.
func (c *Controller) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c.auth == nil || !c.auth.IsAuthenticated(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !c.auth.IsAdmin(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (c *Controller) adminList(w http.ResponseWriter, r *http.Request) {
	list, err := c.repo.List(r.Context())
	if err != nil {
		c.adminError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, list)
}

func (c *Controller) adminGet(w http.ResponseWriter, r *http.Request) {
	e, err := c.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.adminError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, e)
}

func (c *Controller) adminCreate(w http.ResponseWriter, r *http.Request) {
	var e endpoint.Endpoint
	if err := codec.DecodeStrict(r.Body, &e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := c.repo.Create(r.Context(), &e); err != nil {
		c.adminError(w, err)
		return
	}
	c.writeJSON(w, http.StatusCreated, &e)
}

func (c *Controller) adminUpdate(w http.ResponseWriter, r *http.Request) {
	var e endpoint.Endpoint
	if err := codec.DecodeStrict(r.Body, &e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e.ID = chi.URLParam(r, "id")
	if err := c.repo.Update(r.Context(), &e); err != nil {
		c.adminError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, &e)
}

func (c *Controller) adminDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.adminError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) adminDocs(w http.ResponseWriter, r *http.Request) {
	e, err := c.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.adminError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(e.Docs()))
}

func (c *Controller) adminDuplicate(w http.ResponseWriter, r *http.Request) {
	dup, err := c.repo.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.adminError(w, err)
		return
	}
	c.writeJSON(w, http.StatusCreated, dup)
}

// adminError maps save-time failures: validation errors are user-facing,
// unknown ids are 404, the rest is a logged 500.
func (c *Controller) adminError(w http.ResponseWriter, err error) {
	if endpoint.IsBadRequest(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	c.log.Error("admin endpoint operation failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := codec.JSONStrict.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
