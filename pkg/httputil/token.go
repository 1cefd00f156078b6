package httputil

import (
	"errors"
	"net/http"
	"strings"
)

const TokenQueryParam = "token"

var ErrNoToken = errors.New("no table token found in header or query")

// GetTokenFromRequest extracts the table token from the Authorization header,
// falling back to the token query parameter (browsers cannot set headers on
// a WebSocket upgrade)
func GetTokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Support "Bearer <token>" format
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token != "" {
			return token, nil
		}
	}

	if token := r.URL.Query().Get(TokenQueryParam); token != "" {
		return token, nil
	}

	return "", ErrNoToken
}
