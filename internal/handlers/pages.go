package handlers

import (
	"log"
	"net/http"

	"github.com/AnshRaj112/landing-backend/internal/middleware"
	"github.com/AnshRaj112/landing-backend/internal/models"
)

type homePage struct {
	Account      *models.Account
	AccountCount int64
}

// Home renders the landing page with the total number of accounts
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	count, err := h.accounts.Count(r.Context())
	if err != nil {
		// The page still renders without the counter
		log.Printf("⚠️  account count unavailable: %v", err)
	}

	h.pages.Render(w, http.StatusOK, "home.html", "Home page", homePage{
		Account:      middleware.AccountFromContext(r.Context()),
		AccountCount: count,
	})
}

// Preferences renders the static preferences page
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, http.StatusOK, "preferences.html", "Preferences page", struct {
		Account *models.Account
	}{middleware.AccountFromContext(r.Context())})
}

// Health answers liveness probes
func Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
