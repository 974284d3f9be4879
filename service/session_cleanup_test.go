package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signRefresh(t *testing.T, secret []byte, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	return signed
}

func TestRefreshTokenExpired(t *testing.T) {
	secret := []byte("refresh-secret")

	if refreshTokenExpired(signRefresh(t, secret, time.Hour), secret) {
		t.Fatal("live token reported as expired")
	}

	if !refreshTokenExpired(signRefresh(t, secret, -time.Hour), secret) {
		t.Fatal("expired token reported as live")
	}

	if !refreshTokenExpired("garbage", secret) {
		t.Fatal("garbage token reported as live")
	}

	if !refreshTokenExpired(signRefresh(t, []byte("other-secret"), time.Hour), secret) {
		t.Fatal("foreign-signed token reported as live")
	}

	// Only HS256 tokens count as live sessions
	now := time.Now()
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	signed, err := hs512.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if !refreshTokenExpired(signed, secret) {
		t.Fatal("token with unexpected signing method reported as live")
	}
}
