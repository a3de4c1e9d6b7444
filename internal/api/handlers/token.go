// HTTP handler for the token endpoint (public — no AuthMiddleware).
// Exchanges client credentials for a signed JWT.
package handlers

import (
	"encoding/json"
	"net/http"

	pkgauth "github.com/martinserrat/triagent/pkg/auth"
)

// TokenHandler handles POST /auth/token. Credentials are checked against the
// single configured API client; the secret is stored as a bcrypt hash.
type TokenHandler struct {
	clientID   string
	secretHash string
}

// NewTokenHandler creates a TokenHandler for the configured client credentials.
func NewTokenHandler(clientID, secretHash string) *TokenHandler {
	return &TokenHandler{clientID: clientID, secretHash: secretHash}
}

// TokenRequest is the request body for POST /auth/token.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse is the response body returned after successful authentication.
type TokenResponse struct {
	Token string `json:"token"`
}

// Token handles POST /auth/token.
//
// Response codes:
//   - 200 OK: credentials valid, JWT returned
//   - 400 Bad Request: invalid JSON or missing required fields
//   - 401 Unauthorized: invalid credentials (generic — doesn't reveal which field failed)
//   - 500 Internal Server Error: token signing failure
func (h *TokenHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ClientID == "" || req.ClientSecret == "" {
		writeError(w, http.StatusBadRequest, "client_id and client_secret are required")
		return
	}

	if h.clientID == "" || h.secretHash == "" {
		// No client configured: every credential is invalid.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if req.ClientID != h.clientID || !pkgauth.VerifySecret(h.secretHash, req.ClientSecret) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := pkgauth.GenerateToken(req.ClientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
