package endpoint

import (
	"io"
	"mime"
	"net/http"
)

// Request is the view of an incoming HTTP request handed to handlers and
// exposed to snippets. The body is read once up front so snippet access
// cannot interfere with the server's own consumption of it.
type Request struct {
	Method      string
	Path        string
	ContentType string
	RemoteAddr  string
	Headers     map[string]string
	Query       map[string]string
	Body        []byte
}

// NewRequest captures r into the snippet-facing view. Multi-valued headers
// and query parameters keep their first value only.
func NewRequest(r *http.Request) *Request {
	req := &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		Headers:    map[string]string{},
		Query:      map[string]string{},
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			req.ContentType = mt
		} else {
			req.ContentType = ct
		}
	}
	for k := range r.Header {
		req.Headers[k] = r.Header.Get(k)
	}
	for k := range r.URL.Query() {
		req.Query[k] = r.URL.Query().Get(k)
	}
	if r.Body != nil {
		if b, err := io.ReadAll(r.Body); err == nil {
			req.Body = b
		}
	}
	return req
}

// ValidateRequest compares the request against the record's declared
// expectations. Mismatches are protocol errors, raised before any handler
// runs.
func (e *Endpoint) ValidateRequest(req *Request) error {
	if e.RequestMethod != "" && e.RequestMethod != req.Method {
		return ErrMethodNotAllowed()
	}
	if e.RequestContentType != "" && e.RequestContentType != req.ContentType {
		return ErrUnsupportedMediaType()
	}
	return nil
}
