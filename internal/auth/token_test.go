package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenGenerateVerify(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)

	token, err := tm.Generate(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("subject = %d, want 42", userID)
	}
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)
	other := NewTokenManager([]byte("other-secret"), time.Hour)

	token, err := tm.Generate(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify with wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenVerifyExpired(t *testing.T) {
	// TTL forced below the default floor by constructing directly.
	tm := &TokenManager{signingKey: []byte("test-secret"), ttl: -time.Hour}

	token, err := tm.Generate(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := tm.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify expired: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenVerifyMalformed(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		if _, err := tm.Verify(bad); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("verify %q: err = %v, want ErrInvalidToken", bad, err)
		}
	}
}

func TestTokenManagerDefaultTTL(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 0)
	if tm.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", tm.ttl, DefaultTokenTTL)
	}
}
