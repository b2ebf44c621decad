package middleware

import (
	"net/http"
	"strings"

	"github.com/cashtrackr/cashtrackr/internal/auth"
	"github.com/cashtrackr/cashtrackr/internal/handler"
	"github.com/cashtrackr/cashtrackr/internal/store"
)

// RequireAuth verifies the Authorization bearer token, resolves it to a user,
// and attaches the identity to the request context. Only id, name, and email
// travel downstream; the password hash and any pending code stay in the store.
func RequireAuth(users *store.UserStore, tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.WriteError(w, http.StatusUnauthorized, "No authenticated")
				return
			}

			parts := strings.Fields(header)
			if len(parts) < 2 {
				handler.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				handler.WriteError(w, http.StatusUnauthorized, "Invalid Token")
				return
			}

			user, err := users.GetByID(userID)
			if err != nil {
				handler.WriteError(w, http.StatusInternalServerError, "Unexpected error")
				return
			}
			if user == nil {
				// Token outlived its user. Treat as unauthenticated.
				handler.WriteError(w, http.StatusUnauthorized, "Invalid Token")
				return
			}

			identity := auth.Identity{
				UserID: user.ID,
				Name:   user.Name,
				Email:  user.Email,
			}

			ctx := auth.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
