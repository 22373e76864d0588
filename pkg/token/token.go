package token

import (
	"crypto/rand"
	"math/big"
)

const (
	alphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// SessionTokenLength is the length of generated session tokens
	SessionTokenLength = 48
)

// NewSessionToken generates an opaque session token
func NewSessionToken() (string, error) {
	return randomString(SessionTokenLength, alphaNumeric)
}

// randomString generates a random string of given length from the given charset
func randomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}

	return string(result), nil
}
