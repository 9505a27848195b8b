//services/access-service/internal/ports/crypto/argon2.crypto.go

package crypto

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2Prefix = "$argon2id$"

var errMalformedHash = errors.New("malformed password hash")

// Bounds for stored hashes. argon2.IDKey panics below one pass or one lane,
// and an oversized cost would stall every login against that hash.
const (
	maxArgon2Memory     = 1 << 20 // KiB, 1 GiB
	maxArgon2Iterations = 64
	minArgon2SaltLength = 8
	minArgon2KeyLength  = 16
)

// Params defines the memory and CPU cost factors for Argon2id.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams target a small cloud container (0.5 - 1 CPU core).
var DefaultParams = &Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

type argon2Hasher struct {
	params *Params
}

// NewArgon2Hasher hashes new passwords with salted Argon2id. Verification also
// accepts bcrypt hashes ("$2a$", "$2b$", "$2y$") so an operator can bootstrap the
// admin account from a hash produced by htpasswd or similar tooling.
func NewArgon2Hasher(p *Params) PasswordHasher {
	if p == nil {
		p = DefaultParams
	}
	return &argon2Hasher{params: p}
}

func (h *argon2Hasher) HashPassword(ctx context.Context, password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypto/rand failed: %w", err)
	}

	// argon2 does not support cancellation; ctx is kept for the interface.
	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	// PHC string: parameters travel with the hash so defaults can change later.
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *argon2Hasher) VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error) {
	if isBcryptHash(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("invalid bcrypt hash: %w", err)
		}
		return true, nil
	}

	p, salt, want, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, fmt.Errorf("invalid hash format: %w", err)
	}
	got := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	// Constant-time comparison against timing side channels.
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func isBcryptHash(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

// IsSupportedHash reports whether encodedHash is in a format VerifyPassword understands.
func IsSupportedHash(encodedHash string) bool {
	if isBcryptHash(encodedHash) {
		_, err := bcrypt.Cost([]byte(encodedHash))
		return err == nil
	}
	_, _, _, err := decodeArgon2Hash(encodedHash)
	return err == nil
}

// decodeArgon2Hash parses "$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>".
func decodeArgon2Hash(encodedHash string) (p *Params, salt, key []byte, err error) {
	if !strings.HasPrefix(encodedHash, argon2Prefix) {
		return nil, nil, nil, errMalformedHash
	}
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, errMalformedHash
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, err
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible argon2 version %d", version)
	}

	p = &Params{}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, nil, err
	}
	if p.Iterations < 1 || p.Iterations > maxArgon2Iterations ||
		p.Parallelism < 1 ||
		p.Memory < 8*uint32(p.Parallelism) || p.Memory > maxArgon2Memory {
		return nil, nil, nil, errMalformedHash
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, nil, err
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, nil, err
	}
	if len(salt) < minArgon2SaltLength || len(key) < minArgon2KeyLength {
		return nil, nil, nil, errMalformedHash
	}
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
