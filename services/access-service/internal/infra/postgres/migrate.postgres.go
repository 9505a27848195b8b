// services/access-service/internal/infra/postgres/migrate.postgres.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is idempotent; it is applied on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS access_requests (
		seq              BIGSERIAL,
		id               UUID PRIMARY KEY,
		email            TEXT NOT NULL,
		full_name        TEXT NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		reviewer_email   TEXT NULL,
		rejection_reason TEXT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		reviewed_at      TIMESTAMPTZ NULL
	)`,
	// The uniqueness invariant lives here: insert-if-absent relies on it.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_access_requests_email ON access_requests (email)`,
	`CREATE INDEX IF NOT EXISTS idx_access_requests_seq ON access_requests (seq)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('admin', 'user')),
		password_hash TEXT NOT NULL DEFAULT '',
		request_id    UUID NULL REFERENCES access_requests (id) ON DELETE SET NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id            UUID PRIMARY KEY,
		token_hash    TEXT NOT NULL UNIQUE,
		account_id    UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
		account_email TEXT NOT NULL,
		issued_at     TIMESTAMPTZ NOT NULL,
		expires_at    TIMESTAMPTZ NOT NULL,
		revoked_at    TIMESTAMPTZ NULL,
		user_agent    TEXT NOT NULL DEFAULT '',
		ip_address    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_account_id ON sessions (account_id)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id          UUID PRIMARY KEY,
		actor_email TEXT NULL,
		action      TEXT NOT NULL,
		target_id   UUID NULL,
		ip_address  TEXT NOT NULL DEFAULT '',
		metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_target ON audit_events (target_id)`,
}

// Migrate applies the schema in one transaction.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	return tx.Commit()
}
