// services/access-service/internal/infra/postgres/accountStore.postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

type accountRow struct {
	ID           uuid.UUID     `db:"id"`
	Email        string        `db:"email"`
	FullName     string        `db:"full_name"`
	Role         string        `db:"role"`
	PasswordHash string        `db:"password_hash"`
	RequestID    uuid.NullUUID `db:"request_id"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (r accountRow) toDomain() *account.Account {
	acc := &account.Account{
		ID:           r.ID,
		Email:        r.Email,
		FullName:     r.FullName,
		Role:         account.Role(r.Role),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.RequestID.Valid {
		requestID := r.RequestID.UUID
		acc.RequestID = &requestID
	}
	return acc
}

const accountColumns = `id, email, full_name, role, password_hash, request_id, created_at, updated_at`

func (s *AccountStore) CreateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, s.db).ExecContext(ctx, query,
		acc.ID, acc.Email, acc.FullName, string(acc.Role), acc.PasswordHash,
		acc.RequestID, acc.CreatedAt, acc.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domainErr.ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *AccountStore) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (s *AccountStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (s *AccountStore) getOne(ctx context.Context, query string, arg any) (*account.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, conn(ctx, s.db), &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErr.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return row.toDomain(), nil
}

func (s *AccountStore) EstablishPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND password_hash = ''`

	res, err := conn(ctx, s.db).ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, conn(ctx, s.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return domainErr.ErrAccountNotFound
	}
	return domainErr.ErrInvalidState
}
