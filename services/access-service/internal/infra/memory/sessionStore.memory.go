package memory

import (
	"context"
	"time"

	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/session"
	"github.com/google/uuid"
)

type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *session.Session) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.sessions[sess.TokenHash] = *sess
	hash := sess.TokenHash
	onRollback(ctx, func() { delete(s.db.sessions, hash) })
	return nil
}

func (s *SessionStore) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	sess, ok := s.db.sessions[tokenHash]
	if !ok {
		return nil, domainErr.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SessionStore) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for hash, sess := range s.db.sessions {
		if sess.ID != id {
			continue
		}
		if sess.RevokedAt == nil {
			previous := sess
			revokedAt := at.UTC()
			sess.RevokedAt = &revokedAt
			s.db.sessions[hash] = sess
			onRollback(ctx, func() { s.db.sessions[hash] = previous })
		}
		return nil
	}
	return domainErr.ErrSessionNotFound
}
