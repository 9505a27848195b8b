// services/access-service/internal/ports/repository/access_request_store.go

package repository

import (
	"context"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/google/uuid"
)

type AccessRequestStore interface {
	// CreateAccessRequest is an atomic insert-if-absent keyed by normalized email.
	// Returns ErrDuplicateRequest when any request already exists for that email.
	CreateAccessRequest(ctx context.Context, req *access.AccessRequest) error
	GetAccessRequestByID(ctx context.Context, id uuid.UUID) (*access.AccessRequest, error)
	GetAccessRequestByEmail(ctx context.Context, email string) (*access.AccessRequest, error)
	// ListAccessRequests returns requests in insertion order. Empty status means all.
	ListAccessRequests(ctx context.Context, status access.RequestStatus) ([]*access.AccessRequest, error)
	// DecideAccessRequest persists an approve/reject. It is a compare-and-swap on
	// status = pending; losing the race returns ErrAlreadyDecided.
	DecideAccessRequest(ctx context.Context, req *access.AccessRequest) error
	// DeleteRejectedAccessRequest is the explicit reset that unblocks an email.
	// Returns ErrInvalidState when the request is not rejected.
	DeleteRejectedAccessRequest(ctx context.Context, id uuid.UUID) error
}

// Key rules:
// context.Context always first
// No sql.ErrNoRows leaks → return domain errors
