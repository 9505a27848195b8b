// services/access-service/internal/domain/session/session.domain.go
package session

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	AccountEmail string
	// TokenHash is the SHA-256 hash of the raw, opaque session token.
	// We never store raw tokens. When a client presents a token we hash it
	// in the app and query the store for the match.
	TokenHash string

	IssuedAt  time.Time
	ExpiresAt time.Time

	// RevokedAt is a kill switch (logout or admin action). Non-nil means dead.
	RevokedAt *time.Time

	UserAgent string
	IPAddress string
}

// IsActive reports whether the session can still authenticate requests at now.
func (s *Session) IsActive(now time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}
