// services/access-service/internal/infra/postgres/auditStore.postgres.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	"github.com/jmoiron/sqlx"
)

type AuditStore struct {
	db *sqlx.DB
}

func NewAuditStore(db *sqlx.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Append(ctx context.Context, event *audit.AuditEvent) error {
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, actor_email, action, target_id, ip_address, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)`

	// lib/pq sends []byte as bytea, so the JSON goes over the wire as text.
	_, err = conn(ctx, s.db).ExecContext(ctx, query,
		event.ID, event.ActorEmail, event.Action, event.TargetID,
		event.IPAddress, string(raw), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
