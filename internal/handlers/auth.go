package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/landing-backend/internal/middleware"
	"github.com/AnshRaj112/landing-backend/internal/models"
	"github.com/AnshRaj112/landing-backend/internal/services"
)

const genericLoginError = "Invalid email or password."

type authPage struct {
	Account  *models.Account
	Errors   []string
	FullName string
	Email    string
	Phone    string
}

// AuthPage serves the combined login/signup form.
// A POST carrying fullname or password_confirm is a signup, anything else a login.
func (h *Handler) AuthPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderAuth(w, authPage{Account: middleware.AccountFromContext(r.Context())})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderAuth(w, authPage{Errors: []string{err.Error()}})
		return
	}

	_, hasFullName := r.PostForm["fullname"]
	_, hasConfirm := r.PostForm["password_confirm"]
	if hasFullName || hasConfirm {
		h.signup(w, r)
		return
	}
	h.login(w, r)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	form := services.SignupForm{
		FullName:        r.PostForm.Get("fullname"),
		Email:           r.PostForm.Get("email"),
		Phone:           r.PostForm.Get("phone"),
		Password:        r.PostForm.Get("password"),
		PasswordConfirm: r.PostForm.Get("password_confirm"),
	}

	account, _, err := h.auth.Signup(r.Context(), form)
	if err != nil {
		log.Printf("❌ signup failed: %v", err)
		h.renderAuth(w, authPage{
			Errors:   []string{err.Error()},
			FullName: form.FullName,
			Email:    form.Email,
			Phone:    form.Phone,
		})
		return
	}
	log.Printf("✅ account %d created (%s)", account.ID, account.Username)

	if form.Password != "" {
		if _, err := h.auth.AuthenticateAccount(r.Context(), account, form.Password); err == nil {
			if _, err := h.sessions.Login(w, r, account.ID); err != nil {
				log.Printf("⚠️  session for new account %d not created: %v", account.ID, err)
			}
		}
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	email := r.PostForm.Get("email")

	account, err := h.auth.Authenticate(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		msg := genericLoginError
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Printf("❌ login failed: %v", err)
			msg = "Something went wrong. Please try again."
		}
		h.renderAuth(w, authPage{Errors: []string{msg}, Email: email})
		return
	}

	if _, err := h.sessions.Login(w, r, account.ID); err != nil {
		log.Printf("❌ session for account %d not created: %v", account.ID, err)
		h.renderAuth(w, authPage{Errors: []string{"Something went wrong. Please try again."}, Email: email})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) renderAuth(w http.ResponseWriter, page authPage) {
	h.pages.Render(w, http.StatusOK, "auth.html", "Auth page", page)
}

// Logout ends the cookie session and goes back home
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		log.Printf("⚠️  logout: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
