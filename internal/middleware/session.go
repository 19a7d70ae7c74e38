package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/AnshRaj112/landing-backend/internal/models"
	"github.com/AnshRaj112/landing-backend/internal/services"
)

type accountKey struct{}

// WithAccount returns a copy of ctx carrying account
func WithAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the logged-in account, or nil for anonymous requests
func AccountFromContext(ctx context.Context) *models.Account {
	a, _ := ctx.Value(accountKey{}).(*models.Account)
	return a
}

// CurrentAccount resolves the session cookie into the request context.
// Unknown or expired sessions leave the request anonymous.
func CurrentAccount(sessions *services.SessionManager, accounts services.AccountRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok, err := sessions.FromRequest(r)
			if err != nil {
				log.Printf("⚠️  session lookup failed: %v", err)
			}
			if ok {
				account, err := accounts.FindByID(r.Context(), id)
				if err != nil {
					log.Printf("⚠️  session account %d lookup failed: %v", id, err)
				}
				if account != nil && account.IsActive {
					r = r.WithContext(WithAccount(r.Context(), account))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
