package routes

import (
	"github.com/AnshRaj112/landing-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	r.Get("/health", handlers.Health)

	// Pages
	r.Get("/", h.Home)
	r.Get("/preferences/", h.Preferences)
	r.Get("/tercihler/", h.Preferences)
	r.Post("/logout/", h.Logout)

	// Combined login/signup form, also reachable under its older names
	for _, path := range []string{"/auth/", "/kayit-ol/", "/giris-yap/"} {
		r.Get(path, h.AuthPage)
		r.Post(path, h.AuthPage)
	}

	// JSON API; handlers answer wrong verbs themselves with a JSON 405
	r.HandleFunc("/api/auth/send-verification", h.SendVerification)
	r.HandleFunc("/api/auth/resend-code", h.SendVerification)
	r.HandleFunc("/api/auth/verify-code", h.VerifyCode)
	r.HandleFunc("/api/auth/login", h.APILogin)

	// Debug lookup, intentionally unauthenticated
	r.Get("/inspect_user/", h.InspectUser)
}
