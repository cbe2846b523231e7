package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	token, err := mgr.GenerateAccessToken("dev-alice")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	claims, err := mgr.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "dev-alice" || claims.Subject != "dev-alice" || claims.Kind != KindAccess {
		t.Errorf("unexpected claims %+v", claims)
	}
	if _, err := mgr.ValidateRefreshToken(token); !errors.Is(err, ErrWrongKind) {
		t.Errorf("access token accepted as refresh: %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	token, err := mgr.GenerateRefreshToken("dev-bob")
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	claims, err := mgr.ValidateRefreshToken(token)
	if err != nil || claims.UserID != "dev-bob" {
		t.Fatalf("validate: %v %+v", err, claims)
	}
	if _, err := mgr.ValidateAccessToken(token); !errors.Is(err, ErrWrongKind) {
		t.Errorf("refresh token accepted as access: %v", err)
	}
}

func TestGenerateTokenPair(t *testing.T) {
	mgr := NewJWTManager("test-secret-key-123")
	pair, err := mgr.GenerateTokenPair("dev-carol")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Errorf("unexpected pair %+v", pair)
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expected expires_in=900, got %d", pair.ExpiresIn)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	mgr := NewJWTManager("secret-one")
	other, _ := NewJWTManager("secret-two").GenerateAccessToken("dev-alice")

	expiredMgr := &JWTManager{secret: []byte("secret-one"), accessExpiry: -time.Second}
	expired, _ := expiredMgr.GenerateAccessToken("dev-alice")

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "dev-alice",
		Kind:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte("secret-one"))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           "dev-alice",
		Kind:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", other},
		{"expired", expired},
		{"wrong issuer", foreign},
		{"unsigned", noneAlg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
