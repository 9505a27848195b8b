// services/access-service/internal/ports/repository/session_store.go

package repository

import (
	"context"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/session"
	"github.com/google/uuid"
)

type SessionStore interface {
	CreateSession(ctx context.Context, s *session.Session) error
	// GetSessionByTokenHash returns ErrSessionNotFound for unknown hashes.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error
}
