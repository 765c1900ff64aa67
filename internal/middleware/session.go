package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/andreasstove999/resource-panel/internal/session"
)

const (
	SessionCookie    = "panel_session"
	HeaderHXRequest  = "HX-Request"
	HeaderHXRedirect = "HX-Redirect"
	loginRoute       = "/"
)

// RequireSession resolves the panel session cookie and stores the session in
// the request context. Requests without a live session are sent back to the
// login page.
func RequireSession(store session.Store, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || strings.TrimSpace(c.Value) == "" {
				redirectToLogin(w, r)
				return
			}

			s, err := store.Get(r.Context(), c.Value)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					logger.Printf("session lookup failed: %v cid=%s", err, GetCorrelationID(r.Context()))
				}
				ClearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

func GetSession(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxSession).(session.Session)
	return s, ok
}

func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(HeaderHXRequest), "true")
}

func SetSessionCookie(w http.ResponseWriter, s session.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, loginRoute)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginRoute, http.StatusSeeOther)
}
