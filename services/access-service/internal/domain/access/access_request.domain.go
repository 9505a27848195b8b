// services/access-service/internal/domain/access/access_request.domain.go
package access

import (
	"fmt"
	"strings"
	"time"

	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// AccessRequest is an application for platform access tied to one email.
type AccessRequest struct {
	ID              uuid.UUID
	Email           string // normalized, unique across stored requests
	FullName        string
	Status          RequestStatus
	ReviewerEmail   *string // Nullable
	RejectionReason *string // Nullable
	CreatedAt       time.Time
	ReviewedAt      *time.Time // Nullable
}

// NewAccessRequest validates the applicant data and builds a pending request.
func NewAccessRequest(email, fullName string, now time.Time) (*AccessRequest, error) {
	email = NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	if !ValidEmail(email) {
		return nil, fmt.Errorf("%w: a valid email address is required", domainErr.ErrInvalidInput)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domainErr.ErrInvalidInput)
	}
	return &AccessRequest{
		ID:        uuid.New(),
		Email:     email,
		FullName:  fullName,
		Status:    RequestStatusPending,
		CreatedAt: now.UTC(),
	}, nil
}

func (request *AccessRequest) IsPending() bool  { return request.Status == RequestStatusPending }
func (request *AccessRequest) IsApproved() bool { return request.Status == RequestStatusApproved }
func (request *AccessRequest) IsRejected() bool { return request.Status == RequestStatusRejected }

// Approve moves a pending request to approved. Decided requests never move again.
func (request *AccessRequest) Approve(reviewerEmail string, now time.Time) error {
	if !request.IsPending() {
		return domainErr.ErrAlreadyDecided
	}
	reviewedAt := now.UTC()
	request.Status = RequestStatusApproved
	request.ReviewerEmail = &reviewerEmail
	request.ReviewedAt = &reviewedAt
	return nil
}

// Reject moves a pending request to rejected. The email stays blocked until the
// request is cleared.
func (request *AccessRequest) Reject(reviewerEmail, reason string, now time.Time) error {
	if !request.IsPending() {
		return domainErr.ErrAlreadyDecided
	}
	reviewedAt := now.UTC()
	request.Status = RequestStatusRejected
	request.ReviewerEmail = &reviewerEmail
	request.ReviewedAt = &reviewedAt
	if reason = strings.TrimSpace(reason); reason != "" {
		request.RejectionReason = &reason
	}
	return nil
}

//*Why approve/reject methods live in DOMAIN?
/* State transitions must be guarded. This is a finite state machine:
PENDING
   ├── approve → APPROVED
   └── reject  → REJECTED
Once approved/rejected it cannot change again. Reversing a decision means
clearing the rejected record and submitting a new one. */
