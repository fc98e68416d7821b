// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// TokenAuth checks a static bearer token. Only the bcrypt hash is kept.
type TokenAuth struct {
	tokenHash []byte
}

// NewTokenAuth hashes token for later comparison.
func NewTokenAuth(token string) (*TokenAuth, error) {
	return newTokenAuth(token, bcrypt.DefaultCost)
}

func newTokenAuth(token string, cost int) (*TokenAuth, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	if len(token) < 16 {
		return nil, errors.New("token must be at least 16 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash token: %w", err)
	}
	return &TokenAuth{tokenHash: hash}, nil
}

// Validate reports whether the Authorization header carries the token.
func (a *TokenAuth) Validate(authHeader string) bool {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.tokenHash, []byte(token)) == nil
}

// Middleware rejects requests without the token with 401.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Validate(r.Header.Get("Authorization")) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="pushward"`)
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid bearer token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
