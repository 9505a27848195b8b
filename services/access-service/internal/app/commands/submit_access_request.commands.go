// services/access-service/internal/app/commands/submit_access_request.commands.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
)

type SubmitAccessRequestHandler struct {
	requests repository.AccessRequestStore
	accounts repository.AccountStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	opts     Options
}

func NewSubmitAccessRequestHandler(
	requests repository.AccessRequestStore,
	accounts repository.AccountStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	opts Options,
) *SubmitAccessRequestHandler {
	return &SubmitAccessRequestHandler{
		requests: requests,
		accounts: accounts,
		audit:    auditRepo,
		tx:       tx,
		opts:     opts.withDefaults(),
	}
}

type SubmitAccessRequestParams struct {
	Email     string
	FullName  string
	IPAddress string
}

// Handle records a new pending request. Anonymous: anyone may apply.
func (h *SubmitAccessRequestHandler) Handle(ctx context.Context, params SubmitAccessRequestParams) (*access.AccessRequest, error) {
	req, err := access.NewAccessRequest(params.Email, params.FullName, h.opts.Now())
	if err != nil {
		return nil, err
	}

	err = h.tx.RunInTx(ctx, func(ctx context.Context) error {
		// A bootstrapped admin has an account but no request; its email is taken too.
		if _, err := h.accounts.GetAccountByEmail(ctx, req.Email); err == nil {
			return domainErr.ErrDuplicateRequest
		} else if !errors.Is(err, domainErr.ErrAccountNotFound) {
			return fmt.Errorf("failed to check account: %w", err)
		}

		// The store's insert-if-absent is the real uniqueness guard.
		if err := h.requests.CreateAccessRequest(ctx, req); err != nil {
			return err
		}

		event := audit.New(audit.ActionRequestSubmitted, "", &req.ID, req.CreatedAt)
		event.IPAddress = params.IPAddress
		event.Metadata["email"] = req.Email
		return h.audit.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	h.opts.Logger.InfoContext(ctx, "access request submitted", slog.String("request_id", req.ID.String()))
	h.opts.publish(ctx, requestEvent(contracts.EventAccessRequestSubmitted, req))
	return req, nil
}

func requestEvent(name string, req *access.AccessRequest) contracts.AccessRequestEvent {
	event := contracts.AccessRequestEvent{
		Event:      name,
		RequestID:  req.ID.String(),
		Email:      req.Email,
		FullName:   req.FullName,
		Status:     string(req.Status),
		OccurredAt: req.CreatedAt,
	}
	if req.ReviewedAt != nil {
		event.OccurredAt = *req.ReviewedAt
	}
	if req.RejectionReason != nil {
		event.Reason = *req.RejectionReason
	}
	return event
}
