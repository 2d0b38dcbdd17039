package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/auth"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

type claimsKey struct{}

// ClaimsFrom returns the token claims stored by Authenticate.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, http.StatusUnauthorized, "Missing token")
				return
			}

			claims, err := svc.Verify(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// AuthHandler serves registration, login and the token check route.
type AuthHandler struct {
	svc *auth.Service
	log *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	switch err := h.svc.Register(creds.Email, creds.Password); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "User registered"})
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Email and password required")
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusBadRequest, "User already exists")
	default:
		h.log.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	token, err := h.svc.Login(creds.Email, creds.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"token": token, "email": strings.TrimSpace(creds.Email)})
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Email and password required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid login")
	default:
		h.log.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// Protected handles GET /api/auth/protected
func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"message": "Access granted", "user": claims})
}
