// services/access-service/internal/app/commands/approve_access_request.commands.go
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
	"github.com/google/uuid"
)

type ApproveAccessRequestHandler struct {
	requests repository.AccessRequestStore
	accounts repository.AccountStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	signer   crypto.InviteSigner
	opts     Options
}

func NewApproveAccessRequestHandler(
	requests repository.AccessRequestStore,
	accounts repository.AccountStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	signer crypto.InviteSigner,
	opts Options,
) *ApproveAccessRequestHandler {
	return &ApproveAccessRequestHandler{
		requests: requests,
		accounts: accounts,
		audit:    auditRepo,
		tx:       tx,
		signer:   signer,
		opts:     opts.withDefaults(),
	}
}

type ApproveAccessRequestParams struct {
	RequestID uuid.UUID
	Actor     Actor
	IPAddress string
}

type ApproveAccessRequestResult struct {
	Request         *access.AccessRequest
	Account         *account.Account
	InviteToken     string
	InviteExpiresAt time.Time
}

// Handle approves a pending request and creates its account in the same
// transaction. The invite token lets the applicant set a password.
func (h *ApproveAccessRequestHandler) Handle(ctx context.Context, params ApproveAccessRequestParams) (*ApproveAccessRequestResult, error) {
	if err := params.Actor.requireReviewer(); err != nil {
		return nil, err
	}

	var result ApproveAccessRequestResult
	err := h.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := h.requests.GetAccessRequestByID(ctx, params.RequestID)
		if err != nil {
			return err
		}
		now := h.opts.Now()
		// Domain state transition: pending -> approved, or ErrAlreadyDecided.
		if err := req.Approve(params.Actor.Email, now); err != nil {
			return err
		}
		// Compare-and-swap in the store; a concurrent decision loses here.
		if err := h.requests.DecideAccessRequest(ctx, req); err != nil {
			return err
		}

		acc := account.FromApprovedRequest(req, now)
		if err := h.accounts.CreateAccount(ctx, acc); err != nil {
			return err
		}

		// Signed inside the transaction so a signing failure leaves the request pending.
		token, expiresAt, err := h.signer.SignInvite(ctx, crypto.InviteClaims{AccountID: acc.ID, Email: acc.Email})
		if err != nil {
			return fmt.Errorf("failed to issue invite: %w", err)
		}

		event := audit.New(audit.ActionRequestApproved, params.Actor.Email, &req.ID, now)
		event.IPAddress = params.IPAddress
		event.Metadata["email"] = req.Email
		event.Metadata["account_id"] = acc.ID.String()
		if err := h.audit.Append(ctx, event); err != nil {
			return err
		}

		result = ApproveAccessRequestResult{Request: req, Account: acc, InviteToken: token, InviteExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.opts.Logger.InfoContext(ctx, "access request approved",
		slog.String("request_id", result.Request.ID.String()),
		slog.String("account_id", result.Account.ID.String()),
		slog.String("reviewer", params.Actor.Email),
	)
	event := requestEvent(contracts.EventAccessRequestApproved, result.Request)
	event.InviteToken = result.InviteToken
	event.InviteExpiresAt = &result.InviteExpiresAt
	h.opts.publish(ctx, event)
	return &result, nil
}
