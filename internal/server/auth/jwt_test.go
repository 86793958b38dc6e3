package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("super-secret"), time.Hour)

	tok, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	id, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if id.UserID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", id.UserID, "user-123")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("secret"), time.Hour)
	issuedAt := time.Now()
	m.now = func() time.Time { return issuedAt }

	tok, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(time.Hour + time.Second) }

	_, err = m.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_StillValidBeforeExpiry(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("secret"), time.Hour)
	issuedAt := time.Now()
	m.now = func() time.Time { return issuedAt }

	tok, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }

	if _, err := m.Verify(tok); err != nil {
		t.Fatalf("expected token to be valid, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager([]byte("right-secret"), time.Hour).Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenManager([]byte("wrong-secret"), time.Hour).Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad signature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m := NewTokenManager([]byte("k"), time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: "u3",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := NewTokenManager(secret, time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u4"}).SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := NewTokenManager(secret, time.Hour).Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for token without exp, got %v", err)
	}
}

func TestIssue_EmbedsUserIDClaim(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager([]byte("secret"), time.Hour).Issue("abc")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("ParseUnverified error: %v", err)
	}
	if claims.UserID != "abc" {
		t.Errorf("expected userId claim abc, got %q", claims.UserID)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected exp and iat claims")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("expected 1h validity window, got %s", got)
	}
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity on empty context")
	}

	ctx := ContextWithIdentity(context.Background(), Identity{UserID: "u5"})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID != "u5" {
		t.Fatalf("expected identity u5, got %+v (ok=%v)", id, ok)
	}
}
