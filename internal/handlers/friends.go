package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timecapsule-app/backend/internal/models"
)

type FriendService interface {
	SendRequest(ctx context.Context, requesterID, recipientID string) error
	Respond(ctx context.Context, recipientID, requesterID string, accept bool) error
	RemoveFriend(ctx context.Context, selfID, otherID string) error
	Friends(ctx context.Context, userID string) ([]models.User, error)
	Requests(ctx context.Context, userID string) ([]models.FriendRequest, []models.User, error)
	SearchByEmail(ctx context.Context, email string) (*models.User, error)
}

type FriendHandler struct {
	friends  FriendService
	sessions SessionValidator
}

func NewFriendHandler(friends FriendService, sessions SessionValidator) *FriendHandler {
	return &FriendHandler{friends: friends, sessions: sessions}
}

// List returns the caller's friends.
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	friends, err := h.friends.Friends(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: friends})
}

// Remove deletes the friendship with the user in the URL.
func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}
	otherID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.friends.RemoveFriend(ctx, userID, otherID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Friend removed"})
}

// Requests returns the caller's pending incoming requests together with
// the requesters' user records.
func (h *FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	requests, requesters, err := h.friends.Requests(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"requests":   requests,
			"requesters": requesters,
		},
	})
}

type sendRequestBody struct {
	RecipientID string `json:"recipient_id"`
}

// SendRequest creates a pending friend request.
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}

	var req sendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.RecipientID == "" {
		writeBadRequest(w, "Recipient is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.friends.SendRequest(ctx, userID, req.RecipientID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "Request sent"})
}

type respondBody struct {
	Accept bool `json:"accept"`
}

// Respond accepts or declines the pending request from the requester in
// the URL.
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}
	requesterID := chi.URLParam(r, "requesterId")

	var req respondBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.friends.Respond(ctx, userID, requesterID, req.Accept); err != nil {
		writeError(w, err)
		return
	}
	message := "Request declined"
	if req.Accept {
		message = "Request accepted"
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// Search finds a user by exact email.
func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(w, r, h.sessions); !ok {
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		writeBadRequest(w, "Email query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.friends.SearchByEmail(ctx, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: user.Public()})
}
