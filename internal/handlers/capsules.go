package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/timecapsule-app/backend/internal/models"
	"github.com/timecapsule-app/backend/internal/services"
)

type CapsuleService interface {
	Create(ctx context.Context, callerID string, in services.CreateCapsuleInput) (models.Capsule, error)
	Buckets(ctx context.Context, userID string) (services.CapsuleBuckets, error)
	Saved(ctx context.Context, userID string) ([]models.Capsule, error)
	ToggleSaved(ctx context.Context, callerID, capsuleID string) (models.Capsule, error)
	Delete(ctx context.Context, callerID, capsuleID string) error
	Now() time.Time
}

type CapsuleHandler struct {
	capsules CapsuleService
	sessions SessionValidator
}

func NewCapsuleHandler(capsules CapsuleService, sessions SessionValidator) *CapsuleHandler {
	return &CapsuleHandler{capsules: capsules, sessions: sessions}
}

type createCapsuleRequest struct {
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	UnlockDate  time.Time `json:"unlock_date"`
	RecipientID string    `json:"recipient_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// capsuleView decorates a capsule with its unlock state relative to the
// server clock. Clients re-evaluate on their own tick; this field is a
// convenience, not the source of truth.
type capsuleView struct {
	models.Capsule
	IsUnlocked bool `json:"is_unlocked"`
}

func (h *CapsuleHandler) view(c models.Capsule) capsuleView {
	return capsuleView{Capsule: c, IsUnlocked: c.IsUnlocked(h.capsules.Now())}
}

func (h *CapsuleHandler) views(caps []models.Capsule) []capsuleView {
	out := make([]capsuleView, 0, len(caps))
	for _, c := range caps {
		out = append(out, h.view(c))
	}
	return out
}

// Create stores a new capsule for the caller or a chosen recipient.
func (h *CapsuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}

	var req createCapsuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.UnlockDate.IsZero() {
		writeBadRequest(w, "Unlock date is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.capsules.Create(ctx, userID, services.CreateCapsuleInput{
		Title:       req.Title,
		Message:     req.Message,
		UnlockDate:  req.UnlockDate,
		RecipientID: req.RecipientID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Capsule created",
		Data:    h.view(c),
	})
}

// List returns the caller's capsules partitioned into personal,
// received and sent buckets.
func (h *CapsuleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	buckets, err := h.capsules.Buckets(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"personal": h.views(buckets.Personal),
			"received": h.views(buckets.Received),
			"sent":     h.views(buckets.Sent),
		},
	})
}

// Saved returns the caller's bookmarked capsules.
func (h *CapsuleHandler) Saved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	caps, err := h.capsules.Saved(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.views(caps)})
}

// ToggleSaved flips the bookmark flag on one of the caller's capsules.
func (h *CapsuleHandler) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}
	capsuleID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.capsules.ToggleSaved(ctx, userID, capsuleID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: h.view(c)})
}

// Delete removes one of the caller's capsules.
func (h *CapsuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r, h.sessions)
	if !ok {
		return
	}
	capsuleID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.capsules.Delete(ctx, userID, capsuleID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Capsule deleted"})
}
