package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials carries the message shown on the login screen.
	ErrInvalidCredentials = errors.New("Invalid credentials. Access Denied.")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const issuer = "yijinjing"

// UserClaims represents JWT claims for authenticated users.
type UserClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated user behind a request.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Token is the result of a successful login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity
}

type demoAccount struct {
	username string
	password string
	role     string
}

var demoAccounts = []demoAccount{
	{username: "admin", password: "1234", role: "Super Admin"},
	{username: "trader", password: "alpha", role: "Quant Trader"},
	{username: "guest", password: "visitor", role: "Observer"},
}

type account struct {
	hash []byte
	role string
}

// Service authenticates the demo accounts and issues HS256 tokens.
type Service struct {
	accounts map[string]account
	secret   []byte
	ttl      time.Duration
	delay    time.Duration
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithTokenTTL sets token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLoginDelay simulates network latency before every login answer.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithNow overrides the time source for issuing and checking tokens.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService hashes the demo accounts with the given bcrypt cost.
func NewService(secret string, cost int, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: empty jwt secret")
	}
	s := &Service{
		accounts: make(map[string]account, len(demoAccounts)),
		secret:   []byte(secret),
		ttl:      12 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, a := range demoAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", a.username, err)
		}
		s.accounts[a.username] = account{hash: hash, role: a.role}
	}
	return s, nil
}

// Login checks credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}

	username = strings.TrimSpace(username)
	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := UserClaims{
		UserID: username,
		Role:   acc.role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Token:     signed,
		ExpiresAt: expiresAt,
		Identity:  Identity{Username: username, Role: acc.role},
	}, nil
}

// ParseToken validates a token and returns its identity.
func (s *Service) ParseToken(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if _, known := s.accounts[claims.UserID]; !known {
		return nil, ErrInvalidToken
	}
	return &Identity{Username: claims.UserID, Role: claims.Role}, nil
}

// TokenTTL reports the configured token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.ttl
}
