package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

type inspectedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type inspectedProfile struct {
	Phone string `json:"phone"`
}

type inspectResponse struct {
	Found   bool              `json:"found"`
	User    *inspectedUser    `json:"user,omitempty"`
	Profile *inspectedProfile `json:"profile"`
}

// InspectUser is an unauthenticated debug lookup of an account and its
// profile by email.
func (h *Handler) InspectUser(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email param missing"})
		return
	}

	account, err := h.accounts.FindByEmail(r.Context(), utils.NormalizeEmail(email))
	if err != nil {
		log.Printf("❌ inspect %s: %v", email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	if account == nil {
		writeJSON(w, http.StatusOK, inspectResponse{Found: false})
		return
	}

	resp := inspectResponse{
		Found: true,
		User: &inspectedUser{
			ID:       account.ID,
			Username: account.Username,
			Email:    account.Email,
			FullName: account.FullName,
		},
	}

	profile, err := h.accounts.FindProfile(r.Context(), account.ID)
	if err != nil {
		log.Printf("⚠️  inspect %s: profile lookup failed: %v", email, err)
	}
	if profile != nil {
		resp.Profile = &inspectedProfile{Phone: profile.Phone}
	}

	writeJSON(w, http.StatusOK, resp)
}
