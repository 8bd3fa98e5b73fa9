package endpoint

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ursais/web-api/pkg/sandbox"
)

// ScopeEnv is the restricted environment handle exposed to snippets as
// `env`. Find is optional; when nil the lookup returns undefined.
type ScopeEnv struct {
	Database string
	Find     func(ctx context.Context, route string) (*Endpoint, error)
}

// BuildScope assembles the evaluation context for one call. The returned
// names are the entire surface a snippet may use; keep this list in sync
// with SnippetDocs.
func BuildScope(ctx context.Context, call *Call, env ScopeEnv, sink LogSink) sandbox.Scope {
	e := call.Endpoint
	return sandbox.Scope{
		"env":      envScope(ctx, env),
		"user":     identityScope(call.As),
		"endpoint": endpointScope(e),
		"request":  requestScope(call.Request),
		"datetime": datetimeScope(),
		"dateutil": dateutilScope(),
		"time":     timeScope(),
		"json":     jsonScope(),
		"Response": sandbox.Func(newResponse),
		"werkzeug": map[string]any{
			"NotFound":     raiseHTTP(ErrNotFound),
			"BadRequest":   raiseHTTP(ErrBadRequest),
			"Unauthorized": raiseHTTP(ErrUnauthorized),
		},
		"exceptions": map[string]any{
			"UserError":       raiseUser,
			"ValidationError": raiseValidation,
		},
		"log": logFunc(ctx, call, sink),
	}
}

func envScope(ctx context.Context, env ScopeEnv) map[string]any {
	return map[string]any{
		"database": env.Database,
		"find_endpoint": sandbox.Func(func(args ...any) (any, error) {
			if env.Find == nil || len(args) == 0 {
				return nil, nil
			}
			route, ok := args[0].(string)
			if !ok {
				return nil, NewValidationError("find_endpoint expects a route string")
			}
			found, err := env.Find(ctx, route)
			if err != nil || found == nil {
				return nil, err
			}
			return endpointScope(found), nil
		}),
	}
}

func identityScope(id Identity) map[string]any {
	return map[string]any{
		"id":       id.ID,
		"username": id.Username,
		"role":     id.Role,
	}
}

func endpointScope(e *Endpoint) map[string]any {
	return map[string]any{
		"id":        e.ID,
		"name":      e.Name,
		"route":     e.Route,
		"exec_mode": string(e.ExecMode),
		"auth_type": string(e.AuthType),
	}
}

func requestScope(req *Request) map[string]any {
	headers := make(map[string]any, len(req.Headers))
	for k, v := range req.Headers {
		headers[k] = v
	}
	query := make(map[string]any, len(req.Query))
	for k, v := range req.Query {
		query[k] = v
	}
	return map[string]any{
		"method":       req.Method,
		"path":         req.Path,
		"content_type": req.ContentType,
		"remote_addr":  req.RemoteAddr,
		"headers":      headers,
		"query":        query,
		"body":         string(req.Body),
	}
}

func datetimeScope() map[string]any {
	return map[string]any{
		"now": sandbox.Func(func(...any) (any, error) {
			return time.Now(), nil
		}),
		"utcnow": sandbox.Func(func(...any) (any, error) {
			return time.Now().UTC(), nil
		}),
		"format": sandbox.Func(func(args ...any) (any, error) {
			t, layout, err := timeAndLayout(args)
			if err != nil {
				return nil, err
			}
			return t.Format(layout), nil
		}),
	}
}

func dateutilScope() map[string]any {
	return map[string]any{
		"parse": sandbox.Func(func(args ...any) (any, error) {
			if len(args) == 0 {
				return nil, NewValidationError("parse expects a date string")
			}
			s, ok := args[0].(string)
			if !ok {
				return nil, NewValidationError("parse expects a date string")
			}
			layout := time.RFC3339
			if len(args) > 1 {
				if l, ok := args[1].(string); ok {
					layout = l
				}
			}
			t, err := time.Parse(layout, s)
			if err != nil {
				return nil, NewValidationError("cannot parse %q: %v", s, err)
			}
			return t, nil
		}),
		"add_days": sandbox.Func(func(args ...any) (any, error) {
			if len(args) < 2 {
				return nil, NewValidationError("add_days expects a time and a day count")
			}
			t, ok := args[0].(time.Time)
			if !ok {
				return nil, NewValidationError("add_days expects a time value")
			}
			n, ok := args[1].(int64)
			if !ok {
				return nil, NewValidationError("add_days expects an integer day count")
			}
			return t.AddDate(0, 0, int(n)), nil
		}),
	}
}

func timeScope() map[string]any {
	return map[string]any{
		"now": sandbox.Func(func(...any) (any, error) {
			return time.Now().Unix(), nil
		}),
		"unix": sandbox.Func(func(args ...any) (any, error) {
			if len(args) == 0 {
				return nil, NewValidationError("unix expects a time value")
			}
			t, ok := args[0].(time.Time)
			if !ok {
				return nil, NewValidationError("unix expects a time value")
			}
			return t.Unix(), nil
		}),
	}
}

func jsonScope() map[string]any {
	return map[string]any{
		"dumps": sandbox.Func(func(args ...any) (any, error) {
			if len(args) == 0 {
				return "null", nil
			}
			b, err := json.Marshal(args[0])
			if err != nil {
				return nil, NewValidationError("json dumps: %v", err)
			}
			return string(b), nil
		}),
		"loads": sandbox.Func(func(args ...any) (any, error) {
			if len(args) == 0 {
				return nil, NewValidationError("json loads expects a string")
			}
			s, ok := args[0].(string)
			if !ok {
				return nil, NewValidationError("json loads expects a string")
			}
			var v any
			if err := json.Unmarshal([]byte(s), &v); err != nil {
				return nil, NewValidationError("json loads: %v", err)
			}
			return v, nil
		}),
	}
}

// newResponse is the `Response` constructor: Response(payload[, status[, headers]]).
func newResponse(args ...any) (any, error) {
	res := map[string]any{}
	if len(args) > 0 {
		res["payload"] = args[0]
	}
	if len(args) > 1 {
		res["status_code"] = args[1]
	}
	if len(args) > 2 {
		res["headers"] = args[2]
	}
	return res, nil
}

func raiseHTTP(newErr func() *HTTPError) sandbox.Func {
	return func(args ...any) (any, error) {
		err := newErr()
		if len(args) > 0 {
			if msg, ok := args[0].(string); ok {
				err.Msg = msg
			}
		}
		return nil, err
	}
}

func raiseUser(args ...any) (any, error) {
	return nil, &UserError{Msg: firstString(args)}
}

func raiseValidation(args ...any) (any, error) {
	return nil, &ValidationError{Msg: firstString(args)}
}

func logFunc(ctx context.Context, call *Call, sink LogSink) sandbox.Func {
	return func(args ...any) (any, error) {
		if sink == nil || len(args) == 0 {
			return nil, nil
		}
		msg, ok := args[0].(string)
		if !ok {
			return nil, NewValidationError("log expects a message string")
		}
		level := "info"
		if len(args) > 1 {
			if l, ok := args[1].(string); ok && l != "" {
				level = l
			}
		}
		return nil, sink.Log(ctx, LogEntry{
			Level:      level,
			Message:    msg,
			UserID:     call.As.ID,
			RecordID:   call.Endpoint.ID,
			RecordName: call.Endpoint.Name,
		})
	}
}

func timeAndLayout(args []any) (time.Time, string, error) {
	if len(args) < 2 {
		return time.Time{}, "", NewValidationError("format expects a time and a layout")
	}
	t, ok := args[0].(time.Time)
	if !ok {
		return time.Time{}, "", NewValidationError("format expects a time value")
	}
	layout, ok := args[1].(string)
	if !ok {
		return time.Time{}, "", NewValidationError("format expects a layout string")
	}
	return t, layout, nil
}

func firstString(args []any) string {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	return ""
}
