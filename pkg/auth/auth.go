// Package auth provides credential parsing, verification, and the
// authorization gate for inbound operations.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidAuthHeader is returned when an authorization header cannot be
// decoded as basic auth.
var ErrInvalidAuthHeader = errors.New("invalid authorization header")

// ParseBasicAuth decodes a basic authorization header into a username and
// secret.
func ParseBasicAuth(header string) (username, secret string, err error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
		return "", "", ErrInvalidAuthHeader
	}

	plain, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", ErrInvalidAuthHeader
	}

	username, secret, ok := strings.Cut(string(plain), ":")
	if !ok {
		return "", "", ErrInvalidAuthHeader
	}

	return username, secret, nil
}

// HashCredential returns the hex SHA-256 digest of a secret. Repository
// configuration may store either the plaintext secret or this digest.
func HashCredential(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifyCredential reports whether secret matches the stored credential,
// either verbatim or by digest. Both comparisons always run so the unknown
// user and wrong password cases are indistinguishable by timing.
func VerifyCredential(secret, stored string) bool {
	plain := subtle.ConstantTimeCompare([]byte(secret), []byte(stored))
	digest := subtle.ConstantTimeCompare([]byte(HashCredential(secret)), []byte(stored))
	return plain == 1 || digest == 1
}
