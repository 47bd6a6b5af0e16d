package utils

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	// RoleAdmin marks tokens issued to the administrator.
	RoleAdmin = "admin"
	// RoleMember marks tokens issued to team members.
	RoleMember = "member"

	downloadAudience = "expense-document"
)

// AccessClaims are the claims carried by API bearer tokens.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 bearer token for subject with role.
func GenerateAccessToken(subject, role, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ErrTokenAudience is returned when a document link is presented as a bearer token.
var ErrTokenAudience = errors.New("token audience not accepted")

// ParseAccessToken parses a bearer token, validates its signature and standard claims.
func ParseAccessToken(tokenString string, secretKey string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, hmacKey([]byte(secretKey)))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if slices.Contains(claims.Audience, downloadAudience) {
		return nil, ErrTokenAudience
	}
	return claims, nil
}

func hmacKey(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	}
}

// downloadKey derives the document-link signing key so links never verify
// as bearer tokens under the shared secret.
func downloadKey(secret string) []byte {
	key := make([]byte, sha256.Size)
	// Reading sha256.Size bytes from HKDF-SHA256 cannot fail.
	_, _ = io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(downloadAudience)), key)
	return key
}

// DownloadTokens issues and checks short-lived tokens that let a chat button
// fetch one request's document without a session.
type DownloadTokens struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// IssueDownloadToken returns a token bound to expenseID.
func (d DownloadTokens) IssueDownloadToken(expenseID string) (string, error) {
	if d.Secret == "" {
		return "", errors.New("download token secret is not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    d.Issuer,
		Subject:   expenseID,
		Audience:  jwt.ClaimStrings{downloadAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(d.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(downloadKey(d.Secret))
}

// VerifyDownloadToken checks that token is valid and bound to expenseID.
func (d DownloadTokens) VerifyDownloadToken(token, expenseID string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, hmacKey(downloadKey(d.Secret)), jwt.WithAudience(downloadAudience))
	if err != nil {
		return err
	}
	if !parsed.Valid || claims.Subject != expenseID {
		return fmt.Errorf("download token is not valid for request %s", expenseID)
	}
	return nil
}
