package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/timecapsule-app/backend/internal/models"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, string, error)
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Signup handles account registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, token, err := h.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Account created",
		Data:    authPayload{User: user.Public(), Token: token},
	})
}

// Signin handles login.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, token, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Signed in",
		Data:    authPayload{User: user.Public(), Token: token},
	})
}

// Signout invalidates the caller's session.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.auth.SignOut(ctx, token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Signed out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.auth.CurrentUser(ctx, token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user.Public()})
}
