// Package auth registers users, checks passwords and issues short-lived
// HS256 bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

var (
	ErrMissingCredentials = errors.New("email and password required")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid login")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims are the token contents returned to callers of the protected route.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service keeps users in memory. Accounts do not survive a restart.
type Service struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu    sync.RWMutex
	users map[string][]byte
}

// NewService constructs a Service from config.
func NewService(cfg config.AuthConfig) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		cost:   cost,
		now:    time.Now,
		users:  make(map[string][]byte),
	}
}

// Register stores a bcrypt hash of password under email.
func (s *Service) Register(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return ErrUserExists
	}
	s.users[email] = hash
	return nil
}

// Login verifies the password and returns a signed token.
func (s *Service) Login(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	s.mu.RLock()
	hash, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.Issue(email)
}

// Issue signs a token for email that expires after the configured TTL.
func (s *Service) Issue(email string) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its claims. Anything other than a valid,
// unexpired HS256 token signed with our secret is ErrInvalidToken.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
