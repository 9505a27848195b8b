// shared/contracts/access_request.events.go
package contracts

import "time"

// Event names published on the access-request topic.
const (
	EventAccessRequestSubmitted = "access_request.submitted"
	EventAccessRequestApproved  = "access_request.approved"
	EventAccessRequestRejected  = "access_request.rejected"
)

// AccessRequestEvent is the single source of truth for what the access service
// tells the rest of the platform. Keyed by email so one applicant's events stay ordered.
type AccessRequestEvent struct {
	Event      string    `json:"event"`
	RequestID  string    `json:"requestId"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`

	// Set on approval only. The notification service turns it into an invite link.
	InviteToken     string     `json:"inviteToken,omitempty"`
	InviteExpiresAt *time.Time `json:"inviteExpiresAt,omitempty"`
}
