// services/access-service/internal/app/commands/accept_invitation.commands.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
)

/*
ACCEPT INVITATION — CREDENTIAL ESTABLISHMENT

Golden Rules enforced:
1. Only an approved account (one that exists) can be invited
2. The invite works once: it only succeeds while no password is set
3. Expired, tampered or foreign tokens all look the same to the caller
*/

type AcceptInvitationHandler struct {
	accounts repository.AccountStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	hasher   crypto.PasswordHasher
	signer   crypto.InviteSigner
	opts     Options
}

func NewAcceptInvitationHandler(
	accounts repository.AccountStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	hasher crypto.PasswordHasher,
	signer crypto.InviteSigner,
	opts Options,
) *AcceptInvitationHandler {
	return &AcceptInvitationHandler{
		accounts: accounts,
		audit:    auditRepo,
		tx:       tx,
		hasher:   hasher,
		signer:   signer,
		opts:     opts.withDefaults(),
	}
}

type AcceptInvitationParams struct {
	Token     string
	Password  string
	IPAddress string
}

func (h *AcceptInvitationHandler) Handle(ctx context.Context, params AcceptInvitationParams) (*account.Account, error) {
	if params.Token == "" {
		return nil, fmt.Errorf("%w: invite token is required", domainErr.ErrInvalidInput)
	}
	if err := account.ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	claims, err := h.signer.VerifyInvite(ctx, params.Token)
	if err != nil {
		h.opts.Logger.DebugContext(ctx, "invite rejected", slog.Any("error", err))
		return nil, domainErr.ErrInvalidInvite
	}

	acc, err := h.accounts.GetAccountByID(ctx, claims.AccountID)
	if errors.Is(err, domainErr.ErrAccountNotFound) {
		return nil, domainErr.ErrInvalidInvite
	}
	if err != nil {
		return nil, err
	}
	if acc.Email != claims.Email || acc.HasCredentials() {
		return nil, domainErr.ErrInvalidInvite
	}

	hash, err := h.hasher.HashPassword(ctx, params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = h.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Conditional write: a replayed invite racing this one loses here.
		if err := h.accounts.EstablishPassword(ctx, acc.ID, hash); err != nil {
			if errors.Is(err, domainErr.ErrInvalidState) {
				return domainErr.ErrInvalidInvite
			}
			return err
		}
		event := audit.New(audit.ActionInviteAccepted, acc.Email, &acc.ID, h.opts.Now())
		event.IPAddress = params.IPAddress
		return h.audit.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	acc.PasswordHash = hash
	h.opts.Logger.InfoContext(ctx, "invite accepted", slog.String("account_id", acc.ID.String()))
	return acc, nil
}
