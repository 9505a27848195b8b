// services/access-service/internal/app/commands/ensure_admin.commands.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/google/uuid"
)

// EnsureAdminHandler bootstraps the administrator configured at start-up.
// Without it nobody could ever approve the first request.
type EnsureAdminHandler struct {
	accounts repository.AccountStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	hasher   crypto.PasswordHasher
	opts     Options
}

func NewEnsureAdminHandler(
	accounts repository.AccountStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	hasher crypto.PasswordHasher,
	opts Options,
) *EnsureAdminHandler {
	return &EnsureAdminHandler{accounts: accounts, audit: auditRepo, tx: tx, hasher: hasher, opts: opts.withDefaults()}
}

type EnsureAdminParams struct {
	Email    string
	FullName string
	// Exactly one of Password or PasswordHash is used; the hash wins.
	Password     string
	PasswordHash string
}

// Handle is idempotent: an existing admin is returned untouched (created=false).
func (h *EnsureAdminHandler) Handle(ctx context.Context, params EnsureAdminParams) (acc *account.Account, created bool, err error) {
	email := access.NormalizeEmail(params.Email)
	if !access.ValidEmail(email) {
		return nil, false, fmt.Errorf("%w: admin email is invalid", domainErr.ErrInvalidInput)
	}

	existing, err := h.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		if existing.Role != account.RoleAdmin {
			return nil, false, fmt.Errorf("%w: %s exists but is not an administrator", domainErr.ErrInvalidState, email)
		}
		return existing, false, nil
	}
	if !errors.Is(err, domainErr.ErrAccountNotFound) {
		return nil, false, err
	}

	hash, err := h.resolveHash(ctx, params)
	if err != nil {
		return nil, false, err
	}

	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		fullName = "Administrator"
	}
	now := h.opts.Now().UTC()
	acc = &account.Account{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		Role:         account.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := h.accounts.CreateAccount(ctx, acc); err != nil {
			return err
		}
		return h.audit.Append(ctx, audit.New(audit.ActionAdminBootstrap, "", &acc.ID, now))
	})
	if errors.Is(err, domainErr.ErrEmailAlreadyExists) {
		// Another replica won the bootstrap race.
		existing, getErr := h.accounts.GetAccountByEmail(ctx, email)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	h.opts.Logger.InfoContext(ctx, "administrator bootstrapped", slog.String("email", email))
	return acc, true, nil
}

func (h *EnsureAdminHandler) resolveHash(ctx context.Context, params EnsureAdminParams) (string, error) {
	if params.PasswordHash != "" {
		if !crypto.IsSupportedHash(params.PasswordHash) {
			return "", fmt.Errorf("%w: admin password hash must be argon2id or bcrypt", domainErr.ErrInvalidInput)
		}
		return params.PasswordHash, nil
	}
	if err := account.ValidatePassword(params.Password); err != nil {
		return "", err
	}
	return h.hasher.HashPassword(ctx, params.Password)
}
