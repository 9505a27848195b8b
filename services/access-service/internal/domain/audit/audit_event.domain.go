// services/access-service/internal/domain/audit/audit_event.domain.go
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the access workflow.
const (
	ActionRequestSubmitted = "ACCESS_REQUEST_SUBMITTED"
	ActionRequestApproved  = "ACCESS_REQUEST_APPROVED"
	ActionRequestRejected  = "ACCESS_REQUEST_REJECTED"
	ActionRequestCleared   = "ACCESS_REQUEST_CLEARED"
	ActionInviteAccepted   = "INVITE_ACCEPTED"
	ActionInviteReissued   = "INVITE_REISSUED"
	ActionAdminBootstrap   = "ADMIN_BOOTSTRAPPED"
	ActionUserLogin        = "USER_LOGIN"
	ActionUserLogout       = "USER_LOGOUT"
)

// AuditEvent represents an immutable security record.
// It answers: Who did what, where, when, and with what context?
type AuditEvent struct {
	ID         uuid.UUID
	ActorEmail *string    // nil for anonymous actions (a prospective user submitting)
	Action     string     // e.g., "ACCESS_REQUEST_APPROVED"
	TargetID   *uuid.UUID // ID of the resource being acted upon
	IPAddress  string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// New builds an event stamped with a fresh id.
func New(action string, actorEmail string, targetID *uuid.UUID, now time.Time) *AuditEvent {
	event := &AuditEvent{
		ID:        uuid.New(),
		Action:    action,
		TargetID:  targetID,
		Metadata:  map[string]any{},
		CreatedAt: now.UTC(),
	}
	if actorEmail != "" {
		event.ActorEmail = &actorEmail
	}
	return event
}

/*Audit logs are write-only, append-only and immutable.

Every successful state-changing command that affects access MUST emit exactly
one audit event. Application commands emit them, not controllers or repositories.

NEVER audit: reads, failed authorization, validation errors.
ALWAYS audit: request submitted / approved / rejected / cleared, invite accepted,
login success, logout, admin bootstrap.
*/
