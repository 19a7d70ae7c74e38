package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/AnshRaj112/landing-backend/internal/services"
	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Handler serves the pages and the JSON API
type Handler struct {
	accounts     services.AccountRepository
	verification *services.VerificationService
	auth         *services.AuthService
	sessions     *services.SessionManager
	pages        *Renderer
}

func New(accounts services.AccountRepository, verification *services.VerificationService, auth *services.AuthService, sessions *services.SessionManager, pages *Renderer) *Handler {
	return &Handler{
		accounts:     accounts,
		verification: verification,
		auth:         auth,
		sessions:     sessions,
		pages:        pages,
	}
}

// messageResponse is the error body of the JSON API
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️  failed to write response: %v", err)
	}
}

// decodeJSON fills dest from the request body. A missing or malformed body
// leaves dest as an empty object so field validation reports it uniformly.
func decodeJSON(r *http.Request, dest any) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		return
	}
	_ = json.Unmarshal(body, dest)
}

// allowMethod answers 405 unless r uses method
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "Method not allowed"})
	return false
}

// writeAPIError maps a service error onto the JSON API
func writeAPIError(w http.ResponseWriter, err error) {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: ve.Message})
	case errors.Is(err, services.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid code"})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid credentials"})
	default:
		log.Printf("❌ request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
}
