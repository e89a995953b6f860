package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

var million = big.NewInt(1_000_000)

// SixDigitCode returns a uniformly random zero-padded 6-digit code.
func SixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, million)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// OpaqueToken returns byteLen random bytes hex-encoded, for refresh tokens
// and one-shot confirmation links.
func OpaqueToken(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ShortSuffix returns a short hex tag used when deriving a unique username
// from an email address.
func ShortSuffix() (string, error) {
	return OpaqueToken(6)
}
