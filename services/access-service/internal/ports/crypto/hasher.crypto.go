//services/access-service/internal/ports/crypto/hasher.crypto.go

package crypto

import "context"

// PasswordHasher defines the contract for password security.
// The application layer never cares about the algorithm.
type PasswordHasher interface {
	HashPassword(ctx context.Context, password string) (string, error)
	VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error)
}
