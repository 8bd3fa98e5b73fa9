package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("route required", func(t *testing.T) {
		e := &Endpoint{Route: "   "}
		err := e.Normalize()
		require.Error(t, err)
		assert.True(t, IsBadRequest(err))
	})

	t.Run("leading slash and cleanup", func(t *testing.T) {
		e := &Endpoint{Route: "demo//value/"}
		require.NoError(t, e.Normalize())
		assert.Equal(t, "/demo/value", e.Route)
	})

	t.Run("method uppercased", func(t *testing.T) {
		e := &Endpoint{Route: "/x", RequestMethod: " get "}
		require.NoError(t, e.Normalize())
		assert.Equal(t, "GET", e.RequestMethod)
	})

	t.Run("default auth type", func(t *testing.T) {
		e := &Endpoint{Route: "/x"}
		require.NoError(t, e.Normalize())
		assert.Equal(t, AuthUser, e.AuthType)
	})
}

func TestValidate(t *testing.T) {
	t.Run("public requires exec as user", func(t *testing.T) {
		e := &Endpoint{Route: "/x", AuthType: AuthPublic}
		err := e.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exec as user")
	})

	t.Run("public with exec as user passes", func(t *testing.T) {
		e := &Endpoint{Route: "/x", AuthType: AuthPublic, ExecAsUser: "svc"}
		assert.NoError(t, e.Validate())
	})

	t.Run("unknown auth type rejected", func(t *testing.T) {
		e := &Endpoint{Route: "/x", AuthType: "anonymous"}
		assert.Error(t, e.Validate())
	})

	t.Run("code mode requires a valued snippet", func(t *testing.T) {
		e := &Endpoint{
			Route:       "/x",
			AuthType:    AuthUser,
			ExecMode:    ModeCode,
			CodeSnippet: "\n# just a comment\n   \n// another\n",
		}
		err := e.Validate()
		require.Error(t, err)
		assert.True(t, IsBadRequest(err))
	})

	t.Run("code mode with real code passes", func(t *testing.T) {
		e := &Endpoint{
			Route:       "/x",
			AuthType:    AuthUser,
			ExecMode:    ModeCode,
			CodeSnippet: "# header\nresult := {payload: 1}",
		}
		assert.NoError(t, e.Validate())
	})

	t.Run("unregistered mode passes through", func(t *testing.T) {
		e := &Endpoint{Route: "/x", AuthType: AuthUser, ExecMode: "webhook"}
		assert.NoError(t, e.Validate())
	})
}

func TestSnippetValued(t *testing.T) {
	cases := []struct {
		name    string
		snippet string
		want    bool
	}{
		{"empty", "", false},
		{"blank lines", " \n\t\n", false},
		{"only comments", "# a\n// b", false},
		{"code after comments", "# a\nresult := 1", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &Endpoint{CodeSnippet: tc.snippet}
			assert.Equal(t, tc.want, e.SnippetValued())
		})
	}
}

func TestParseResult(t *testing.T) {
	t.Run("full mapping", func(t *testing.T) {
		res, err := ParseResult(map[string]any{
			"payload":     "ok",
			"headers":     map[string]any{"X-Custom": "1"},
			"status_code": int64(201),
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", res.Payload)
		assert.Equal(t, map[string]string{"X-Custom": "1"}, res.Headers)
		assert.Equal(t, 201, res.StatusCode)
	})

	t.Run("non mapping is a config error", func(t *testing.T) {
		_, err := ParseResult("not a map")
		require.Error(t, err)
		assert.True(t, IsBadRequest(err))
	})

	t.Run("non string header rejected", func(t *testing.T) {
		_, err := ParseResult(map[string]any{"headers": map[string]any{"X": 5}})
		assert.Error(t, err)
	})

	t.Run("non integer status rejected", func(t *testing.T) {
		_, err := ParseResult(map[string]any{"status_code": "201"})
		assert.Error(t, err)
	})

	t.Run("all keys optional", func(t *testing.T) {
		res, err := ParseResult(map[string]any{})
		require.NoError(t, err)
		assert.Nil(t, res.Payload)
		assert.Zero(t, res.StatusCode)
	})
}
