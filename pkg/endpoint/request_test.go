package endpoint

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/orders?id=7&id=8", strings.NewReader(`{"a":1}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Header.Set("X-Trace", "abc")

	req := NewRequest(r)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/orders", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	assert.Equal(t, "7", req.Query["id"], "first value wins")
	assert.Equal(t, "abc", req.Headers["X-Trace"])
	assert.Equal(t, `{"a":1}`, string(req.Body))
}

func TestValidateRequest(t *testing.T) {
	e := &Endpoint{
		Route:              "/orders",
		RequestMethod:      "POST",
		RequestContentType: "application/json",
	}

	t.Run("match passes", func(t *testing.T) {
		err := e.ValidateRequest(&Request{Method: "POST", ContentType: "application/json"})
		assert.NoError(t, err)
	})

	t.Run("method mismatch is 405", func(t *testing.T) {
		err := e.ValidateRequest(&Request{Method: "GET", ContentType: "application/json"})
		var he *HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, 405, he.Status)
	})

	t.Run("content type mismatch is 415", func(t *testing.T) {
		err := e.ValidateRequest(&Request{Method: "POST", ContentType: "text/plain"})
		var he *HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, 415, he.Status)
	})

	t.Run("blank expectations accept anything", func(t *testing.T) {
		open := &Endpoint{Route: "/free"}
		assert.NoError(t, open.ValidateRequest(&Request{Method: "DELETE", ContentType: "text/csv"}))
	})
}
