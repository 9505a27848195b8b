//services/access-service/internal/ports/crypto/token.crypto.go

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// SessionTokenBytes is 256 bits of entropy; base64url without padding gives 43 chars.
const SessionTokenBytes = 32

// NewOpaqueToken returns a cryptographically random bearer token.
func NewOpaqueToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken is what we persist and look up. Tokens already carry 256 bits of
// entropy, so a fast digest is enough here (unlike passwords).
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
