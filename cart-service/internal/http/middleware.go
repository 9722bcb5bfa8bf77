package http

import (
	"context"
	"net/http"

	"github.com/fjod/fitlyf/cart-service/internal/session"
	"github.com/google/uuid"
)

const HeaderSessionID = "X-Session-ID"

type sessionKey struct{}

type SessionSource interface {
	Get(ctx context.Context, id string) *session.Session
}

// SessionMiddleware attaches the caller's session. A missing or malformed
// X-Session-ID starts a new session; the id in use is echoed back.
func SessionMiddleware(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderSessionID)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderSessionID, id)

			s := sessions.Get(r.Context(), id)
			ctx := context.WithValue(r.Context(), sessionKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getSessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey{}).(*session.Session); ok {
		return s
	}
	return nil
}
