// services/access-service/internal/app/commands/reject_access_request.commands.go
package commands

import (
	"context"
	"log/slog"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
	"github.com/google/uuid"
)

type RejectAccessRequestHandler struct {
	requests repository.AccessRequestStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	opts     Options
}

func NewRejectAccessRequestHandler(
	requests repository.AccessRequestStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	opts Options,
) *RejectAccessRequestHandler {
	return &RejectAccessRequestHandler{
		requests: requests,
		audit:    auditRepo,
		tx:       tx,
		opts:     opts.withDefaults(),
	}
}

type RejectAccessRequestParams struct {
	RequestID uuid.UUID
	Actor     Actor
	Reason    string
	IPAddress string
}

// Handle rejects a pending request. No account is created and the email stays
// blocked until the request is cleared.
func (h *RejectAccessRequestHandler) Handle(ctx context.Context, params RejectAccessRequestParams) (*access.AccessRequest, error) {
	if err := params.Actor.requireReviewer(); err != nil {
		return nil, err
	}

	var rejected *access.AccessRequest
	err := h.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := h.requests.GetAccessRequestByID(ctx, params.RequestID)
		if err != nil {
			return err
		}
		now := h.opts.Now()
		if err := req.Reject(params.Actor.Email, params.Reason, now); err != nil {
			return err
		}
		if err := h.requests.DecideAccessRequest(ctx, req); err != nil {
			return err
		}

		event := audit.New(audit.ActionRequestRejected, params.Actor.Email, &req.ID, now)
		event.IPAddress = params.IPAddress
		event.Metadata["email"] = req.Email
		if req.RejectionReason != nil {
			event.Metadata["reason"] = *req.RejectionReason
		}
		if err := h.audit.Append(ctx, event); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.opts.Logger.InfoContext(ctx, "access request rejected",
		slog.String("request_id", rejected.ID.String()),
		slog.String("reviewer", params.Actor.Email),
	)
	h.opts.publish(ctx, requestEvent(contracts.EventAccessRequestRejected, rejected))
	return rejected, nil
}
