package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// decoyHash is compared against when a login matches no account, so unknown
// logins cost as much as wrong passwords.
var decoyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("decoy-password"), bcrypt.DefaultCost)
	return h
})

// HashPassword hashes a member password. Passwords over 72 bytes are rejected by bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash reports whether password matches hash. An empty hash never matches.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RejectUnknownLogin burns one hash comparison for a login that matched nothing.
func RejectUnknownLogin(password string) {
	_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
}
