// services/access-service/internal/ports/repository/account_store.go
package repository

import (
	"context"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/google/uuid"
)

type AccountStore interface {
	// CreateAccount returns ErrEmailAlreadyExists on a unique violation.
	CreateAccount(ctx context.Context, acc *account.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*account.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// EstablishPassword sets the hash only while none is set (single-use invite).
	// Returns ErrInvalidState when credentials already exist.
	EstablishPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
