package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dan9191/bankshot/internal/session"
)

type contextKey struct{}

// Authenticator resolves a session token to a live session
type Authenticator interface {
	Authenticate(token string) (*session.Session, error)
}

// AuthMiddleware rejects requests without a valid session token and stores
// the session in the request context. The token is read from the
// Authorization header, or from the token query parameter for WebSocket
// upgrades where browsers cannot set headers.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}
			sess, err := auth.Authenticate(token)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// BearerToken extracts the session token from r, if any.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// SessionFrom returns the session stored by AuthMiddleware.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*session.Session)
	return sess, ok && sess != nil
}
