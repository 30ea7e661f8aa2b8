package delivery

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type ctxKey string

const principalKey ctxKey = "principal"

// AdminPrincipal marks a request that passed the admin gate.
const AdminPrincipal = "admin"

const deniedMsg = "Authorization denied. Admin access required."

// AdminOnly gates a route behind the shared admin secret. The Authorization
// header may carry the raw secret or "Bearer <secret>"; both sides are
// trimmed before comparing. This is a single-factor static-token check, a
// deliberate simplification, not a session or capability system.
func AdminOnly(secret string) func(http.Handler) http.Handler {
	want := []byte(strings.TrimSpace(secret))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			raw := r.Header.Get("Authorization")
			if raw == "" {
				writeError(w, http.StatusUnauthorized, deniedMsg)
				return
			}

			token := raw
			if strings.HasPrefix(token, "Bearer ") {
				token = strings.TrimPrefix(token, "Bearer ")
			}
			token = strings.TrimSpace(token)

			if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				writeError(w, http.StatusUnauthorized, deniedMsg)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, AdminPrincipal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Principal returns the principal marker attached by AdminOnly, or "".
func Principal(ctx context.Context) string {
	p, _ := ctx.Value(principalKey).(string)
	return p
}
