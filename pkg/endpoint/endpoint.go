package endpoint

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// ExecMode selects which handler implementation services an endpoint.
type ExecMode string

const (
	// ModeCode evaluates the stored snippet in the restricted evaluator.
	ModeCode ExecMode = "code"
)

// AuthType declares who may call an endpoint.
type AuthType string

const (
	// AuthPublic endpoints are callable without a session; they always
	// execute as the record's ExecAsUser.
	AuthPublic AuthType = "public"
	// AuthUser endpoints require an authenticated caller.
	AuthUser AuthType = "user"
)

// CopySuffix is appended to the route when a record is duplicated, since
// routes are unique. The operator is expected to fix it up afterwards.
const CopySuffix = "/COPY_FIXME"

// Endpoint is one dynamic route record: where it is mounted, who may call
// it, and the admin-authored snippet that produces the response.
type Endpoint struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Route              string   `json:"route"`
	ExecMode           ExecMode `json:"exec_mode"`
	CodeSnippet        string   `json:"code_snippet"`
	ExecAsUser         string   `json:"exec_as_user"`
	AuthType           AuthType `json:"auth_type"`
	RequestMethod      string   `json:"request_method"`
	RequestContentType string   `json:"request_content_type"`
	CompanyID          string   `json:"company_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// modeValidator checks mode-specific configuration on write.
type modeValidator func(*Endpoint) error

// modeValidators is keyed by ExecMode; modes without an entry pass.
var modeValidators = map[ExecMode]modeValidator{
	ModeCode: validateCode,
}

func (e *Endpoint) Normalize() error {
	if strings.TrimSpace(e.Route) == "" {
		return NewUserError("route is required")
	}
	if !strings.HasPrefix(e.Route, "/") {
		e.Route = "/" + e.Route
	}
	if e.Route != "/" {
		e.Route = path.Clean(e.Route)
	}
	e.RequestMethod = strings.ToUpper(strings.TrimSpace(e.RequestMethod))
	if e.AuthType == "" {
		e.AuthType = AuthUser
	}
	return nil
}

// Validate runs the auth and mode-specific checks that gate every write.
func (e *Endpoint) Validate() error {
	switch e.AuthType {
	case AuthPublic:
		if strings.TrimSpace(e.ExecAsUser) == "" {
			return NewUserError("'exec as user' is mandatory for public endpoints")
		}
	case AuthUser:
	default:
		return NewUserError("unknown auth type %q", e.AuthType)
	}

	if v, ok := modeValidators[e.ExecMode]; ok {
		return v(e)
	}
	return nil
}

func validateCode(e *Endpoint) error {
	if !e.SnippetValued() {
		return NewUserError("exec mode is set to `code`: you must provide a piece of code")
	}
	return nil
}

// SnippetValued reports whether the snippet has at least one line that is
// neither blank nor a comment.
func (e *Endpoint) SnippetValued() bool {
	for _, line := range strings.Split(e.CodeSnippet, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		return true
	}
	return false
}

func (e *Endpoint) String() string {
	return fmt.Sprintf("%s %s (%s)", e.RequestMethod, e.Route, e.ExecMode)
}
