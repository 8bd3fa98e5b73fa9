package auth

import "net/http"

// Dev-only user injection via headers when AUTH_DEV_BYPASS=true
func devUserFromHeaders(r *http.Request) User {
	user := r.Header.Get("X-Dev-User")
	if user == "" {
		return User{}
	}
	return User{
		ID:       r.Header.Get("X-Dev-User-Id"),
		Username: user,
		Role:     r.Header.Get("X-Dev-Role"),
		Provider: r.Header.Get("X-Dev-Provider"),
	}
}
