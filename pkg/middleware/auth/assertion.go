package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// loadPublicKey reads an RSA public key from a PEM file (PKIX or PKCS1).
func loadPublicKey(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("no PEM block in assertion key file")
	}
	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if k, ok := pub.(*rsa.PublicKey); ok {
			return k, nil
		}
		return nil, errors.New("assertion key is not RSA")
	}
	return x509.ParsePKCS1PublicKey(block.Bytes)
}

type assertionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
}

// validateAssertion verifies the signed assertion cookie locally.
func (m *Middleware) validateAssertion(token string) (User, error) {
	if m.assertKey == nil {
		return User{}, errors.New("no assertion key loaded")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithLeeway(m.assertLeeway),
	}
	if m.assertIssuer != "" {
		opts = append(opts, jwt.WithIssuer(m.assertIssuer))
	}
	if m.assertAudience != "" {
		opts = append(opts, jwt.WithAudience(m.assertAudience))
	}

	var claims assertionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.assertKey, nil
	}, opts...)
	if err != nil {
		return User{}, fmt.Errorf("assertion invalid: %w", err)
	}
	if claims.Username == "" {
		return User{}, errors.New("assertion has no username")
	}
	return User{
		ID:       claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		Provider: claims.Provider,
	}, nil
}
