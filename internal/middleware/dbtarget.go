package middleware

import (
	"net/http"

	"toppharma/internal/database"
	"toppharma/internal/featureflags"
)

// DatabaseTarget records the database chosen by the use_local_database
// cookie in the request context. Without the cookie the server default applies.
func DatabaseTarget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, ok := cookieTarget(r); ok {
			r = r.WithContext(database.WithTarget(r.Context(), target))
		}
		next.ServeHTTP(w, r)
	})
}

// cookieTarget reads the database cookie; "true" selects local, any other
// value remote.
func cookieTarget(r *http.Request) (database.Target, bool) {
	c, err := r.Cookie(featureflags.DatabaseCookie)
	if err != nil {
		return "", false
	}
	if c.Value == "true" {
		return database.TargetLocal, true
	}
	return database.TargetRemote, true
}
