// Package auth guards the administrative write path with a single bearer key
// checked against a bcrypt hash from configuration.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashKey produces the bcrypt hash of an admin key for storage in config.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing admin key: %w", err)
	}
	return string(hash), nil
}

// AdminAuth returns middleware that requires the admin bearer key. With no
// hash configured the admin surface is disabled entirely.
func AdminAuth(adminKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKeyHash == "" {
				writeAuthError(w, http.StatusForbidden, "forbidden", "admin key not configured")
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header")
				return
			}

			if bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(token)) != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{Code: code, Message: message},
	})
}
