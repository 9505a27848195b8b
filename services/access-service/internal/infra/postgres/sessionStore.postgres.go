// services/access-service/internal/infra/postgres/sessionStore.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/session"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SessionStore struct {
	db *sqlx.DB
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRow struct {
	ID           uuid.UUID    `db:"id"`
	TokenHash    string       `db:"token_hash"`
	AccountID    uuid.UUID    `db:"account_id"`
	AccountEmail string       `db:"account_email"`
	IssuedAt     time.Time    `db:"issued_at"`
	ExpiresAt    time.Time    `db:"expires_at"`
	RevokedAt    sql.NullTime `db:"revoked_at"`
	UserAgent    string       `db:"user_agent"`
	IPAddress    string       `db:"ip_address"`
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (id, token_hash, account_id, account_email, issued_at, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, s.db).ExecContext(ctx, query,
		sess.ID, sess.TokenHash, sess.AccountID, sess.AccountEmail,
		sess.IssuedAt, sess.ExpiresAt, sess.UserAgent, sess.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	query := `
		SELECT id, token_hash, account_id, account_email, issued_at, expires_at, revoked_at, user_agent, ip_address
		FROM sessions
		WHERE token_hash = $1`

	var row sessionRow
	if err := sqlx.GetContext(ctx, conn(ctx, s.db), &row, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErr.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess := &session.Session{
		ID:           row.ID,
		AccountID:    row.AccountID,
		AccountEmail: row.AccountEmail,
		TokenHash:    row.TokenHash,
		IssuedAt:     row.IssuedAt.UTC(),
		ExpiresAt:    row.ExpiresAt.UTC(),
		UserAgent:    row.UserAgent,
		IPAddress:    row.IPAddress,
	}
	if row.RevokedAt.Valid {
		revokedAt := row.RevokedAt.Time.UTC()
		sess.RevokedAt = &revokedAt
	}
	return sess, nil
}

func (s *SessionStore) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	// First revocation wins; later calls keep the original timestamp.
	query := `UPDATE sessions SET revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`

	res, err := conn(ctx, s.db).ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErr.ErrSessionNotFound
	}
	return nil
}
