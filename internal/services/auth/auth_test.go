package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-0123456789"

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	s, err := NewService(testSecret, bcrypt.MinCost, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestLoginDemoAccounts(t *testing.T) {
	s := newService(t)
	tests := []struct {
		user, pass, role string
		ok               bool
	}{
		{"admin", "1234", "Super Admin", true},
		{"trader", "alpha", "Quant Trader", true},
		{"guest", "visitor", "Observer", true},
		{"admin", "alpha", "", false},
		{"root", "1234", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		tok, err := s.Login(context.Background(), tt.user, tt.pass)
		if !tt.ok {
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("%s/%s: expected invalid credentials, got %v", tt.user, tt.pass, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tt.user, err)
		}
		if tok.Role != tt.role || tok.Username != tt.user {
			t.Fatalf("%s: identity %+v", tt.user, tok.Identity)
		}
		id, err := s.ParseToken(tok.Token)
		if err != nil || id.Username != tt.user || id.Role != tt.role {
			t.Fatalf("%s: parse %+v %v", tt.user, id, err)
		}
	}
	if ErrInvalidCredentials.Error() != "Invalid credentials. Access Denied." {
		t.Fatalf("message = %q", ErrInvalidCredentials.Error())
	}
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newService(t, WithTokenTTL(time.Hour), WithNow(func() time.Time { return now }))
	tok, err := s.Login(context.Background(), "trader", "alpha")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := s.ParseToken(tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: "trader",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, _ := foreign.SignedString([]byte("another-secret-456789"))
	if _, err := s.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token accepted: %v", err)
	}

	if _, err := s.ParseToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestLoginDelayHonoursContext(t *testing.T) {
	s := newService(t, WithLoginDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Login(ctx, "admin", "1234"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
