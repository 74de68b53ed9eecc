package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"toppharma/internal/auth"
	"toppharma/internal/httputil"
)

// UserRoutesPrefix marks routes that require a signed-in user.
const UserRoutesPrefix = "/api/users/"

// AuthMiddleware attaches the Supabase user to the request when a valid
// bearer token is present. Requests under UserRoutesPrefix are rejected
// without one; everything else is public. verifier may be nil when no
// JWKS endpoint is configured, in which case every user route is 401.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			required := strings.HasPrefix(r.URL.Path, UserRoutesPrefix)

			token, err := bearerToken(r)
			if err != nil {
				if required {
					httputil.RespondError(w, http.StatusUnauthorized, err.Error())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				if required {
					httputil.RespondError(w, http.StatusUnauthorized, "authentication is not configured")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				if required {
					httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				logger.Warn("token subject is not a UUID", "subject", claims.Subject)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, userID, claims.Email))
		})
	}
}

var errMissingToken = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}
