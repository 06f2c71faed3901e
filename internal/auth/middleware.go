package auth

import (
	"context"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"net/http"

	"go.uber.org/zap"
)

// UserLookup loads the account a session belongs to.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware attaches a Principal to requests carrying a valid session.
// Requests without one pass through anonymously; handlers decide whether
// authentication is required.
func Middleware(s *Sessions, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.UserID(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.GetUser(r.Context(), id)
			if err != nil {
				obs.FromContext(r.Context()).Debug("session user not found", zap.Int64("user_id", id), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{UserID: u.ID, Role: u.Role()})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
