// services/access-service/internal/app/commands/logout_user.commands.go
package commands

import (
	"context"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
)

type LogoutUserHandler struct {
	sessions repository.SessionStore
	audit    repository.AuditStore
	tx       repository.TransactionManager
	opts     Options
}

func NewLogoutUserHandler(sessions repository.SessionStore, auditRepo repository.AuditStore, tx repository.TransactionManager, opts Options) *LogoutUserHandler {
	return &LogoutUserHandler{sessions: sessions, audit: auditRepo, tx: tx, opts: opts.withDefaults()}
}

type LogoutParams struct {
	Principal *Principal
	IPAddress string
}

// Handle revokes the caller's current session. Other sessions stay valid.
func (h *LogoutUserHandler) Handle(ctx context.Context, params LogoutParams) error {
	sess := params.Principal.Session
	now := h.opts.Now()

	return h.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := h.sessions.RevokeSession(ctx, sess.ID, now); err != nil {
			return err
		}
		event := audit.New(audit.ActionUserLogout, sess.AccountEmail, &sess.AccountID, now)
		event.IPAddress = params.IPAddress
		event.Metadata["session_id"] = sess.ID.String()
		return h.audit.Append(ctx, event)
	})
}
