// services/access-service/internal/app/commands/reissue_invite.commands.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
	"github.com/google/uuid"
)

/*
REISSUE INVITE — RECOVERY FOR APPROVED APPLICANTS

Golden Rules enforced:
1. Only approved requests get invites
2. Only while the account has no password: a reissue can never reset credentials
3. Earlier invites stay valid until one of them is accepted
*/

type ReissueInviteHandler struct {
	requests repository.AccessRequestStore
	accounts repository.AccountStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	signer   crypto.InviteSigner
	opts     Options
}

func NewReissueInviteHandler(
	requests repository.AccessRequestStore,
	accounts repository.AccountStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	signer crypto.InviteSigner,
	opts Options,
) *ReissueInviteHandler {
	return &ReissueInviteHandler{
		requests: requests,
		accounts: accounts,
		audit:    auditRepo,
		tx:       tx,
		signer:   signer,
		opts:     opts.withDefaults(),
	}
}

type ReissueInviteParams struct {
	RequestID uuid.UUID
	Actor     Actor
	IPAddress string
}

type ReissueInviteResult struct {
	Request         *access.AccessRequest
	Account         *account.Account
	InviteToken     string
	InviteExpiresAt time.Time
}

func (h *ReissueInviteHandler) Handle(ctx context.Context, params ReissueInviteParams) (*ReissueInviteResult, error) {
	if err := params.Actor.requireReviewer(); err != nil {
		return nil, err
	}

	var result ReissueInviteResult
	err := h.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := h.requests.GetAccessRequestByID(ctx, params.RequestID)
		if err != nil {
			return err
		}
		if !req.IsApproved() {
			return fmt.Errorf("%w: only approved requests have invites", domainErr.ErrInvalidState)
		}

		acc, err := h.accounts.GetAccountByEmail(ctx, req.Email)
		if errors.Is(err, domainErr.ErrAccountNotFound) {
			return fmt.Errorf("%w: approved request has no account", domainErr.ErrInvalidState)
		}
		if err != nil {
			return err
		}
		if acc.HasCredentials() {
			return fmt.Errorf("%w: credentials already established", domainErr.ErrInvalidState)
		}

		token, expiresAt, err := h.signer.SignInvite(ctx, crypto.InviteClaims{AccountID: acc.ID, Email: acc.Email})
		if err != nil {
			return fmt.Errorf("failed to issue invite: %w", err)
		}

		event := audit.New(audit.ActionInviteReissued, params.Actor.Email, &req.ID, h.opts.Now())
		event.IPAddress = params.IPAddress
		event.Metadata["email"] = req.Email
		event.Metadata["account_id"] = acc.ID.String()
		if err := h.audit.Append(ctx, event); err != nil {
			return err
		}

		result = ReissueInviteResult{Request: req, Account: acc, InviteToken: token, InviteExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.opts.Logger.InfoContext(ctx, "invite reissued",
		slog.String("request_id", result.Request.ID.String()),
		slog.String("account_id", result.Account.ID.String()),
		slog.String("reviewer", params.Actor.Email),
	)
	// Same event as approval so the notification service sends a fresh link.
	event := requestEvent(contracts.EventAccessRequestApproved, result.Request)
	event.InviteToken = result.InviteToken
	event.InviteExpiresAt = &result.InviteExpiresAt
	h.opts.publish(ctx, event)
	return &result, nil
}
