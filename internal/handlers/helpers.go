package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/timecapsule-app/backend/internal/models"
)

const requestTimeout = 5 * time.Second

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SessionValidator resolves bearer tokens to user ids.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (string, bool, error)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, Response{Message: "Authentication required"})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Response{Message: "Not found"})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, Response{Message: "Not allowed"})
	case errors.Is(err, models.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, Response{Message: "An account with this email already exists"})
	case errors.Is(err, models.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, Response{Message: "Invalid email or password"})
	case errors.Is(err, models.ErrAlreadyFriends):
		writeJSON(w, http.StatusConflict, Response{Message: "You are already friends"})
	case errors.Is(err, models.ErrSelfRequest):
		writeJSON(w, http.StatusBadRequest, Response{Message: "You cannot send a request to yourself"})
	default:
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Something went wrong"})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Response{Message: message})
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(header)
}

// requireAuth validates the session and returns the authenticated
// user's id. Returns ("", false) after writing the 401 itself.
func requireAuth(w http.ResponseWriter, r *http.Request, sessions SessionValidator) (string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, models.ErrNotAuthenticated)
		return "", false
	}
	userID, ok, err := sessions.Validate(r.Context(), token)
	if err != nil || !ok {
		writeError(w, models.ErrNotAuthenticated)
		return "", false
	}
	return userID, true
}
