// services/access-service/internal/app/commands/list_access_requests.commands.go
package commands

import (
	"context"
	"fmt"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/google/uuid"
)

// ListAccessRequestsHandler serves the admin review queue. Read-only.
type ListAccessRequestsHandler struct {
	requests repository.AccessRequestStore
}

func NewListAccessRequestsHandler(requests repository.AccessRequestStore) *ListAccessRequestsHandler {
	return &ListAccessRequestsHandler{requests: requests}
}

type ListAccessRequestsParams struct {
	Actor  Actor
	Status string // empty means all
}

func (h *ListAccessRequestsHandler) Handle(ctx context.Context, params ListAccessRequestsParams) ([]*access.AccessRequest, error) {
	if err := params.Actor.requireReviewer(); err != nil {
		return nil, err
	}
	status := access.RequestStatus(params.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErr.ErrInvalidInput, params.Status)
	}
	return h.requests.ListAccessRequests(ctx, status)
}

// Get returns one request for the admin detail view.
func (h *ListAccessRequestsHandler) Get(ctx context.Context, actor Actor, id uuid.UUID) (*access.AccessRequest, error) {
	if err := actor.requireReviewer(); err != nil {
		return nil, err
	}
	return h.requests.GetAccessRequestByID(ctx, id)
}
