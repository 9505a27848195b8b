package memory

import (
	"context"
	"slices"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
)

type AuditStore struct {
	db *DB
}

func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Append(ctx context.Context, event *audit.AuditEvent) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.audit = append(s.db.audit, *event)
	id := event.ID
	onRollback(ctx, func() {
		s.db.audit = slices.DeleteFunc(s.db.audit, func(e audit.AuditEvent) bool { return e.ID == id })
	})
	return nil
}

// Events returns a copy of the log, oldest first.
func (s *AuditStore) Events() []audit.AuditEvent {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return append([]audit.AuditEvent(nil), s.db.audit...)
}
