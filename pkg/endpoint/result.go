package endpoint

// Result is the response-shaping structure a handler returns. All fields
// are optional; the controller fills in defaults when writing the response.
type Result struct {
	Payload    any               `json:"payload,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	StatusCode int               `json:"status_code,omitempty"`
}

// ParseResult normalizes the value a snippet bound to `result`. Anything
// other than a mapping (including an absent binding) is a configuration
// error on the endpoint record, not a caller mistake.
func ParseResult(v any) (Result, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Result{}, NewUserError("code snippet must bind a map to the `result` variable")
	}
	var res Result
	if p, ok := m["payload"]; ok {
		res.Payload = p
	}
	if h, ok := m["headers"]; ok {
		hdrs, ok := h.(map[string]any)
		if !ok {
			return Result{}, NewUserError("result `headers` must be a map of strings")
		}
		res.Headers = make(map[string]string, len(hdrs))
		for k, v := range hdrs {
			s, ok := v.(string)
			if !ok {
				return Result{}, NewUserError("result header %q must be a string", k)
			}
			res.Headers[k] = s
		}
	}
	if sc, ok := m["status_code"]; ok {
		switch n := sc.(type) {
		case int:
			res.StatusCode = n
		case int64:
			res.StatusCode = int(n)
		case float64:
			res.StatusCode = int(n)
		default:
			return Result{}, NewUserError("result `status_code` must be an integer")
		}
	}
	return res, nil
}
