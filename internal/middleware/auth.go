package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hostelgrub/api/internal/auth"
	"github.com/hostelgrub/api/internal/service"
)

type contextKey string

const callerKey contextKey = "caller"

// SessionResolver resolves a bearer token to a caller at a role.
// Satisfied by *service.SessionService.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token, role string) (*service.Caller, error)
}

// RequireRole rejects requests whose bearer token does not name a session
// for role, and otherwise stores the resolved caller in the request context.
func RequireRole(resolver SessionResolver, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolver.ResolveSession(r.Context(), auth.BearerToken(r), role)
			if err != nil {
				var ae *service.AuthError
				if errors.As(err, &ae) {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"message": ae.Message})
					return
				}
				log.Printf("ERROR: resolve session: %v", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the caller stored by RequireRole, or nil.
func CallerFromContext(ctx context.Context) *service.Caller {
	caller, _ := ctx.Value(callerKey).(*service.Caller)
	return caller
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
