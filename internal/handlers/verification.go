package handlers

import (
	"net/http"
)

type sendVerificationRequest struct {
	Email string `json:"email"`
}

type sendVerificationResponse struct {
	Sent bool   `json:"sent"`
	Code string `json:"code"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyCodeResponse struct {
	Token   string `json:"token"`
	Created bool   `json:"created"`
	Email   string `json:"email"`
	UserID  int64  `json:"user_id"`
}

// SendVerification issues a code for the posted email and returns it in the
// response, since no mail is sent. Also serves the resend route.
func (h *Handler) SendVerification(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req sendVerificationRequest
	decodeJSON(r, &req)

	issued, err := h.verification.RequestCode(r.Context(), req.Email)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendVerificationResponse{Sent: true, Code: issued.Code})
}

// VerifyCode checks the posted code and signs the email in, creating its
// account on first use.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req verifyCodeRequest
	decodeJSON(r, &req)

	v, err := h.verification.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyCodeResponse{
		Token:   v.Token,
		Created: v.Created,
		Email:   v.Email,
		UserID:  v.UserID,
	})
}
