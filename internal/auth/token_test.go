package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signMap(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewSigner(testSecret)

	tok, err := s.GenerateToken(42, true)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, ok := s.VerifyToken(tok)
	if !ok {
		t.Fatal("expected token to verify")
	}
	if id.UserID != 42 || !id.IsAdmin {
		t.Fatalf("identity = %+v", id)
	}
}

func TestTokenPayloadIsExactlyUserAndFlag(t *testing.T) {
	s := NewSigner(testSecret)
	tok, err := s.GenerateToken(7, false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("not a JWS compact token: %q", tok)
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload) != 2 || payload["user_id"] != float64(7) || payload["isadmin"] != false {
		t.Fatalf("payload = %v", payload)
	}
}

func TestTokenMissingSecretFailsClosed(t *testing.T) {
	s := NewSigner("  ")
	if _, err := s.GenerateToken(1, false); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("GenerateToken err = %v, want ErrMissingSecret", err)
	}

	forged := signMap(t, jwt.SigningMethodHS256, []byte("guess"), jwt.MapClaims{"user_id": 1, "isadmin": true})
	if _, ok := s.VerifyToken(forged); ok {
		t.Fatal("expected verification to fail without a secret")
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	s := NewSigner(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "garbage.token.here"},
		{"wrong secret", signMap(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": 1})},
		{"wrong algorithm", signMap(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"user_id": 1})},
		{"none algorithm", signMap(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"user_id": 1, "isadmin": true})},
		{"expired", signMap(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"user_id": 1,
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := s.VerifyToken(tt.token); ok {
				t.Fatalf("expected %s token to be rejected", tt.name)
			}
		})
	}
}

func TestVerifyTokenLooseClaims(t *testing.T) {
	s := NewSigner(testSecret)

	tests := []struct {
		name      string
		claims    jwt.MapClaims
		wantAdmin bool
		target    string
		wantActOn bool
	}{
		{"numeric id", jwt.MapClaims{"user_id": 5}, false, "5", true},
		{"string id", jwt.MapClaims{"user_id": "5"}, false, "5", true},
		{"other user", jwt.MapClaims{"user_id": 5}, false, "6", false},
		{"missing id", jwt.MapClaims{"isadmin": false}, false, "0", false},
		{"admin flag 1", jwt.MapClaims{"user_id": 5, "isadmin": 1}, true, "9", true},
		{"admin flag string", jwt.MapClaims{"user_id": 5, "isadmin": "1"}, true, "9", true},
		{"admin flag word", jwt.MapClaims{"user_id": 5, "isadmin": "true"}, false, "9", false},
		{"admin flag absent", jwt.MapClaims{"user_id": 5}, false, "9", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := signMap(t, jwt.SigningMethodHS256, []byte(testSecret), tt.claims)
			id, ok := s.VerifyToken(tok)
			if !ok {
				t.Fatal("expected token to verify")
			}
			if id.IsAdmin != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", id.IsAdmin, tt.wantAdmin)
			}
			if got := id.CanActOn(tt.target); got != tt.wantActOn {
				t.Errorf("CanActOn(%q) = %v, want %v", tt.target, got, tt.wantActOn)
			}
		})
	}
}

func TestFromHeader(t *testing.T) {
	s := NewSigner(testSecret)
	tok, err := s.GenerateToken(3, false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, header := range []string{tok, "Bearer " + tok, "bearer " + tok} {
		id, ok := s.FromHeader(header)
		if !ok || id.UserID != 3 {
			t.Errorf("FromHeader(%q) = %+v, %v", header[:10], id, ok)
		}
	}
	if _, ok := s.FromHeader(""); ok {
		t.Error("expected empty header to be rejected")
	}
	if _, ok := s.FromHeader("Bearer "); ok {
		t.Error("expected bare scheme to be rejected")
	}
}
