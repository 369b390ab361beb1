package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "alice"

	tok, err := GenerateToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	gotUserID, err := GetUserIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if gotUserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", gotUserID, userID)
	}
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	a, _ := GenerateToken("u", secret, time.Hour)
	b, _ := GenerateToken("u", secret, time.Hour)
	if a == b {
		t.Fatal("expected distinct tickets for the same user")
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry in message, got %v", err)
	}
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u1", []byte("right"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := GetUserIDFromToken(tok, []byte("wrong")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := GetUserIDFromToken("not-a-jwt", []byte("s")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_ForeignIssuerOrMissingUser(t *testing.T) {
	t.Parallel()

	secret := []byte("s")
	sign := func(c Claims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return tok
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	foreign := sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "other", ExpiresAt: exp}, UserID: "u"})
	if _, err := GetUserIDFromToken(foreign, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("foreign issuer: expected ErrInvalidToken, got %v", err)
	}

	noUser := sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: exp}})
	if _, err := GetUserIDFromToken(noUser, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("missing user: expected ErrInvalidToken, got %v", err)
	}

	noExp := sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer}, UserID: "u"})
	if _, err := GetUserIDFromToken(noExp, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("missing exp: expected ErrInvalidToken, got %v", err)
	}
}
