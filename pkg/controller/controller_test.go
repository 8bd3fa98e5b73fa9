package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ursais/web-api/pkg/endpoint"
	"github.com/ursais/web-api/pkg/endpoint/store"
	"github.com/ursais/web-api/pkg/sandbox"
	"github.com/ursais/web-api/pkg/transport/httpx"
)

// newTestServer wires a memory repository, the code handler on a real
// evaluator, and no auth middleware (every caller is anonymous).
func newTestServer(t *testing.T) (*store.MemoryRepository, http.Handler) {
	t.Helper()
	repo := store.NewMemoryRepository()
	disp := endpoint.NewDispatcher(nil)
	disp.Register(endpoint.NewCodeHandler(sandbox.NewTengoEvaluator(), endpoint.ScopeEnv{
		Database: "test",
		Find:     repo.FindByRoute,
	}, nil))

	c := New(repo, disp, nil, nil)
	h := BuildRouter(c, BuildDeps{Router: httpx.NewChi()})
	return repo, h
}

func mustCreate(t *testing.T, repo *store.MemoryRepository, e *endpoint.Endpoint) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), e))
}

func publicEndpoint(route, snippet string) *endpoint.Endpoint {
	return &endpoint.Endpoint{
		Name:        "test " + route,
		Route:       route,
		ExecMode:    endpoint.ModeCode,
		CodeSnippet: snippet,
		AuthType:    endpoint.AuthPublic,
		ExecAsUser:  "svc",
	}
}

func TestServeEndpointTextPayload(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/hello", `result := {payload: "hello there"}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/hello", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "hello there", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestServeEndpointJSONPayload(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/report", `
result := {
    payload: {total: 3, currency: "EUR"},
    status_code: 201,
    headers: {"X-Report": "v1"}
}
`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/report", nil))

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "v1", rec.Header().Get("X-Report"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"total": 3, "currency": "EUR"}`, rec.Body.String())
}

func TestServeEndpointParams(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/echo", `result := {payload: params.name}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/echo?name=alice", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestServeEndpointBodyParamsWin(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/merge", `result := {payload: params.name}`))

	req := httptest.NewRequest("POST", "/merge?name=query", strings.NewReader(`{"name":"body"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
}

func TestServeEndpointUnknownRoute(t *testing.T) {
	_, h := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/missing", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestServeEndpointMethodMismatch(t *testing.T) {
	repo, h := newTestServer(t)
	e := publicEndpoint("/strict", `result := {payload: "ok"}`)
	e.RequestMethod = "POST"
	mustCreate(t, repo, e)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/strict", nil))
	assert.Equal(t, 405, rec.Code)
}

func TestServeEndpointContentTypeMismatch(t *testing.T) {
	repo, h := newTestServer(t)
	e := publicEndpoint("/json-only", `result := {payload: "ok"}`)
	e.RequestContentType = "application/json"
	mustCreate(t, repo, e)

	req := httptest.NewRequest("POST", "/json-only", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, 415, rec.Code)
}

func TestServeEndpointAuthRequired(t *testing.T) {
	repo, h := newTestServer(t)
	e := publicEndpoint("/private", `result := {payload: "secret"}`)
	e.AuthType = endpoint.AuthUser
	e.ExecAsUser = ""
	mustCreate(t, repo, e)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/private", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestServeEndpointBusinessErrorMasked(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/guarded", `exceptions.UserError("quota exceeded for tenant 7")`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/guarded", nil))

	assert.Equal(t, 400, rec.Code)
	assert.NotContains(t, rec.Body.String(), "quota", "cause must not leak to the caller")
}

func TestServeEndpointRaisedNotFound(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/lookup", `werkzeug.NotFound("no such order")`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/lookup", nil))

	assert.Equal(t, 404, rec.Code)
	assert.Contains(t, rec.Body.String(), "no such order")
}

func TestServeEndpointScopeEnv(t *testing.T) {
	repo, h := newTestServer(t)
	mustCreate(t, repo, publicEndpoint("/whoami", `
result := {
    payload: user.username + "@" + env.database
}
`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/whoami", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "svc@test", rec.Body.String())
}

func TestAdminAPIClosedWithoutAuth(t *testing.T) {
	_, h := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/endpoints", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestHeartbeat(t *testing.T) {
	_, h := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, 200, rec.Code)
}
