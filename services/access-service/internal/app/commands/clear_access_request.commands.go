// services/access-service/internal/app/commands/clear_access_request.commands.go
package commands

import (
	"context"
	"log/slog"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/google/uuid"
)

// ClearAccessRequestHandler deletes a rejected request so its email can apply again.
type ClearAccessRequestHandler struct {
	requests repository.AccessRequestStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	opts     Options
}

func NewClearAccessRequestHandler(
	requests repository.AccessRequestStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	opts Options,
) *ClearAccessRequestHandler {
	return &ClearAccessRequestHandler{
		requests: requests,
		audit:    auditRepo,
		tx:       tx,
		opts:     opts.withDefaults(),
	}
}

type ClearAccessRequestParams struct {
	RequestID uuid.UUID
	Actor     Actor
	IPAddress string
}

func (h *ClearAccessRequestHandler) Handle(ctx context.Context, params ClearAccessRequestParams) error {
	if err := params.Actor.requireReviewer(); err != nil {
		return err
	}

	err := h.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := h.requests.GetAccessRequestByID(ctx, params.RequestID)
		if err != nil {
			return err
		}
		// Only rejected requests go; the store re-checks the status atomically.
		if err := h.requests.DeleteRejectedAccessRequest(ctx, req.ID); err != nil {
			return err
		}

		event := audit.New(audit.ActionRequestCleared, params.Actor.Email, &req.ID, h.opts.Now())
		event.IPAddress = params.IPAddress
		event.Metadata["email"] = req.Email
		return h.audit.Append(ctx, event)
	})
	if err != nil {
		return err
	}

	h.opts.Logger.InfoContext(ctx, "access request cleared",
		slog.String("request_id", params.RequestID.String()),
		slog.String("reviewer", params.Actor.Email),
	)
	return nil
}
