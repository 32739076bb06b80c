package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/timecapsule-app/backend/internal/handlers"
	"github.com/timecapsule-app/backend/internal/middleware"
)

// Handlers bundles the injected handler set for route registration.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Capsule *handlers.CapsuleHandler
	Friend  *handlers.FriendHandler
	Upload  *handlers.UploadHandler
}

func SetupRoutes(r *chi.Mux, h Handlers, loginLimiter *middleware.LoginLimiter) {
	// Auth routes; signin/signup get the tighter per-IP limiter
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Middleware)
		r.Post("/api/auth/signup", h.Auth.Signup)
		r.Post("/api/auth/signin", h.Auth.Signin)
	})
	r.Post("/api/auth/signout", h.Auth.Signout)
	r.Get("/api/auth/me", h.Auth.Me)

	// Capsule routes
	r.Post("/api/capsules", h.Capsule.Create)
	r.Get("/api/capsules", h.Capsule.List)
	r.Get("/api/capsules/saved", h.Capsule.Saved)
	r.Put("/api/capsules/{id}/saved", h.Capsule.ToggleSaved)
	r.Delete("/api/capsules/{id}", h.Capsule.Delete)

	// Social graph routes
	r.Get("/api/friends", h.Friend.List)
	r.Delete("/api/friends/{id}", h.Friend.Remove)
	r.Get("/api/friends/requests", h.Friend.Requests)
	r.Post("/api/friends/requests", h.Friend.SendRequest)
	r.Put("/api/friends/requests/{requesterId}", h.Friend.Respond)
	r.Get("/api/users", h.Friend.Search)

	// File upload route
	r.Post("/api/upload", h.Upload.Upload)
}
