package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/quotedesk/internal/identity"
	"github.com/Simplici0/quotedesk/internal/model"
	"github.com/Simplici0/quotedesk/internal/store"
)

const sessionCookieName = "quotedesk_session"

type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type userLookup interface {
	UserByEmail(ctx context.Context, email string) (model.User, error)
}

type authService struct {
	users  userLookup
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newAuthService(users userLookup, sessionSecret string, ttl time.Duration) *authService {
	secret := []byte(sessionSecret)
	if len(secret) == 0 {
		log.Printf("warning: SESSION_SECRET is empty, using a random key; sessions end on restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("failed to generate session key: %v", err)
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &authService{users: users, secret: secret, ttl: ttl, now: time.Now}
}

// validateCredentials reports whether password matches the stored bcrypt
// hash of email. Unknown users are not an error.
func (a *authService) validateCredentials(ctx context.Context, email, password string) (model.User, bool, error) {
	u, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("query user credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return model.User{}, false, nil
	}
	return u, true, nil
}

func (a *authService) issueToken(u model.User) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := sessionClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

func (a *authService) verifyToken(raw string) (identity.User, bool) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return identity.User{}, false
	}
	return identity.User{ID: claims.UserID, Email: claims.Email}, true
}

func (a *authService) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken reads the session cookie, falling back to a bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// requireAuth rejects requests without a valid session and stores the
// signed-in user in the request context.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.auth.verifyToken(sessionToken(r))
		if !ok {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), u)))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, "email and password are required", "VALIDATION", http.StatusBadRequest)
		return
	}

	u, valid, err := s.auth.validateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, "login", err)
		return
	}
	if !valid {
		writeError(w, r, "invalid email or password", "INVALID_CREDENTIALS", http.StatusUnauthorized)
		return
	}

	token, expires, err := s.auth.issueToken(u)
	if err != nil {
		fail(w, r, "login", err)
		return
	}
	s.auth.setSessionCookie(w, token, expires)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       identity.User{ID: u.ID, Email: u.Email},
		"token":      token,
		"expires_at": expires,
	})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}
