package handlers

import (
	"net/http"
	"strings"
)

type apiLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type apiLoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// APILogin is the JSON form of the password login. The session token is
// returned in the body and also set as the session cookie.
func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req apiLoginRequest
	decodeJSON(r, &req)

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "email and password required"})
		return
	}

	account, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	token, err := h.sessions.Login(w, r, account.ID)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiLoginResponse{Token: token, UserID: account.ID, Email: account.Email})
}
