package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSecret is returned when tokens are issued without a signing secret.
var ErrMissingSecret = errors.New("token secret is not configured")

// tokenClaims is the signed payload. Registered claims are left empty so the
// body is exactly {"user_id", "isadmin"}.
type tokenClaims struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"isadmin"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 access tokens. Tokens carry no expiry;
// identity and privilege are fixed at issuance.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(strings.TrimSpace(secret))}
}

// GenerateToken signs a token for the given user.
func (s *Signer) GenerateToken(userID int64, isAdmin bool) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken decodes a token signed by this Signer. Any failure, including
// a missing secret, yields false.
func (s *Signer) VerifyToken(tokenStr string) (Identity, bool) {
	if len(s.secret) == 0 || tokenStr == "" {
		return Identity{}, false
	}

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return Identity{}, false
	}

	id := Identity{IsAdmin: looseTrue(claims["isadmin"])}
	if userID, ok := claimID(claims["user_id"]); ok {
		id.UserID = userID
		id.hasUserID = true
	}
	return id, true
}

// FromHeader verifies the value of an Authorization header. The raw token is
// expected; a "Bearer " prefix is tolerated.
func (s *Signer) FromHeader(header string) (Identity, bool) {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	if header == "" {
		return Identity{}, false
	}
	return s.VerifyToken(header)
}
