package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
)

type contextKey struct{}

// ClaimsFromContext returns the claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

type TokenParser interface {
	Parse(ctx context.Context, raw string) (*Claims, error)
}

type Middleware struct {
	tokens     TokenParser
	cookieName string
	log        logrus.FieldLogger
}

func NewMiddleware(tokens TokenParser, cookieName string, log logrus.FieldLogger) *Middleware {
	return &Middleware{tokens: tokens, cookieName: cookieName, log: log}
}

// tokenFromRequest prefers the Authorization header over the session cookie.
func tokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAdmin rejects requests without a valid admin token.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r, m.cookieName)
		if raw == "" {
			api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := m.tokens.Parse(r.Context(), raw)
		if err != nil {
			m.log.WithError(err).Debug("rejected admin token")
			api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !claims.Admin {
			api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
