package auth

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// ProvideAuthentication wires defaults and env config. A missing or bad
// assertion key file is non-fatal; the session path still works.
func ProvideAuthentication() *Middleware {
	hc := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
		},
		Timeout: 8 * time.Second,
	}

	leeway := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("ASSERTION_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leeway = time.Duration(n) * time.Second
		}
	}

	assertCookie := strings.TrimSpace(os.Getenv("ASSERTION_COOKIE_NAME"))
	if assertCookie == "" {
		assertCookie = "assert"
	}

	m := &Middleware{
		httpClient:       hc,
		sessionAPI:       os.Getenv("SESSION_STATE_API"),
		cookieName:       os.Getenv("SESSION_COOKIE_NAME"),
		adminRole:        os.Getenv("ADMIN_ROLE_NAME"),
		devBypass:        os.Getenv("AUTH_DEV_BYPASS") == "true",
		assertCookieName: assertCookie,
		assertIssuer:     strings.TrimSpace(os.Getenv("ASSERTION_ISSUER")),
		assertAudience:   strings.TrimSpace(os.Getenv("ASSERTION_AUDIENCE")),
		assertLeeway:     leeway,
	}

	if keyFile := strings.TrimSpace(os.Getenv("ASSERTION_KEY_FILE")); keyFile != "" {
		if key, err := loadPublicKey(keyFile); err == nil {
			m.assertKey = key
		}
	}

	return m
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
