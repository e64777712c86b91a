package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/app/logging"
)

type Sessions interface {
	Login(ctx context.Context, email, password string) (string, *Claims, error)
	Parse(ctx context.Context, raw string) (*Claims, error)
	Revoke(ctx context.Context, claims *Claims) error
}

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Handler struct {
	sessions   Sessions
	limiter    Limiter
	cookieName string
	secure     bool
	log        logrus.FieldLogger
}

func NewHandler(sessions Sessions, limiter Limiter, cookieName string, secure bool, log logrus.FieldLogger) *Handler {
	return &Handler{sessions: sessions, limiter: limiter, cookieName: cookieName, secure: secure, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     bool      `json:"admin"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ok, err := h.limiter.Allow(r.Context(), api.ClientIP(r))
	if err != nil {
		h.log.WithError(err).Warn("rate limiter unavailable")
	} else if !ok {
		api.ErrorResponse(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	token, claims, err := h.sessions.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.log.WithField("email", logging.RedactEmail(email)).Info("failed login attempt")
			api.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.log.WithError(err).Error("login failed")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	expires := claims.ExpiresAt.Time
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	api.OKResponse(w, loginResponse{Token: token, ExpiresAt: expires, Admin: claims.Admin})
}

// HandleLogout revokes the presented token and clears the cookie. It
// succeeds even without a valid token.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if raw := tokenFromRequest(r, h.cookieName); raw != "" {
		if claims, err := h.sessions.Parse(r.Context(), raw); err == nil {
			if err := h.sessions.Revoke(r.Context(), claims); err != nil {
				h.log.WithError(err).Error("failed to revoke token")
				api.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign out")
				return
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	api.MessageResponse(w, http.StatusOK, "Signed out")
}
