// services/access-service/internal/infra/postgres/accessRequestStore.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccessRequestStore struct {
	db *sqlx.DB
}

func NewAccessRequestStore(db *sqlx.DB) *AccessRequestStore {
	return &AccessRequestStore{db: db}
}

type accessRequestRow struct {
	ID              uuid.UUID      `db:"id"`
	Email           string         `db:"email"`
	FullName        string         `db:"full_name"`
	Status          string         `db:"status"`
	ReviewerEmail   sql.NullString `db:"reviewer_email"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	CreatedAt       time.Time      `db:"created_at"`
	ReviewedAt      sql.NullTime   `db:"reviewed_at"`
}

func (r accessRequestRow) toDomain() *access.AccessRequest {
	req := &access.AccessRequest{
		ID:        r.ID,
		Email:     r.Email,
		FullName:  r.FullName,
		Status:    access.RequestStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.ReviewerEmail.Valid {
		req.ReviewerEmail = &r.ReviewerEmail.String
	}
	if r.RejectionReason.Valid {
		req.RejectionReason = &r.RejectionReason.String
	}
	if r.ReviewedAt.Valid {
		reviewedAt := r.ReviewedAt.Time.UTC()
		req.ReviewedAt = &reviewedAt
	}
	return req
}

const accessRequestColumns = `id, email, full_name, status, reviewer_email, rejection_reason, created_at, reviewed_at`

func (s *AccessRequestStore) CreateAccessRequest(ctx context.Context, req *access.AccessRequest) error {
	// ON CONFLICT makes the insert-if-absent atomic under concurrent submits.
	query := `
		INSERT INTO access_requests (id, email, full_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err := conn(ctx, s.db).QueryRowxContext(ctx, query,
		req.ID, req.Email, req.FullName, string(req.Status), req.CreatedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domainErr.ErrDuplicateRequest
	}
	if err != nil {
		return fmt.Errorf("failed to insert access request: %w", err)
	}
	return nil
}

func (s *AccessRequestStore) GetAccessRequestByID(ctx context.Context, id uuid.UUID) (*access.AccessRequest, error) {
	query := `SELECT ` + accessRequestColumns + ` FROM access_requests WHERE id = $1`
	return s.getOne(ctx, query, id)
}

func (s *AccessRequestStore) GetAccessRequestByEmail(ctx context.Context, email string) (*access.AccessRequest, error) {
	query := `SELECT ` + accessRequestColumns + ` FROM access_requests WHERE email = $1`
	return s.getOne(ctx, query, email)
}

func (s *AccessRequestStore) getOne(ctx context.Context, query string, arg any) (*access.AccessRequest, error) {
	var row accessRequestRow
	if err := sqlx.GetContext(ctx, conn(ctx, s.db), &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErr.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get access request: %w", err)
	}
	return row.toDomain(), nil
}

func (s *AccessRequestStore) ListAccessRequests(ctx context.Context, status access.RequestStatus) ([]*access.AccessRequest, error) {
	query := `
		SELECT ` + accessRequestColumns + `
		FROM access_requests
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY seq ASC`

	var rows []accessRequestRow
	if err := sqlx.SelectContext(ctx, conn(ctx, s.db), &rows, query, string(status)); err != nil {
		return nil, fmt.Errorf("failed to list access requests: %w", err)
	}
	result := make([]*access.AccessRequest, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (s *AccessRequestStore) DecideAccessRequest(ctx context.Context, req *access.AccessRequest) error {
	query := `
		UPDATE access_requests
		SET status = $2, reviewer_email = $3, rejection_reason = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'pending'`

	res, err := conn(ctx, s.db).ExecContext(ctx, query,
		req.ID, string(req.Status), req.ReviewerEmail, req.RejectionReason, req.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to decide access request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOr(ctx, req.ID, domainErr.ErrAlreadyDecided)
	}
	return nil
}

func (s *AccessRequestStore) DeleteRejectedAccessRequest(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM access_requests WHERE id = $1 AND status = 'rejected'`

	res, err := conn(ctx, s.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear access request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOr(ctx, id, domainErr.ErrInvalidState)
	}
	return nil
}

// missingOr tells a guarded statement that matched nothing apart from a row
// that does not exist.
func (s *AccessRequestStore) missingOr(ctx context.Context, id uuid.UUID, otherwise error) error {
	var exists bool
	err := sqlx.GetContext(ctx, conn(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM access_requests WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("failed to check access request: %w", err)
	}
	if !exists {
		return domainErr.ErrRequestNotFound
	}
	return otherwise
}
