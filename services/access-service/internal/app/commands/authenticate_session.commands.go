// services/access-service/internal/app/commands/authenticate_session.commands.go
package commands

import (
	"context"
	"errors"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/session"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
)

type AuthenticateSessionHandler struct {
	sessions repository.SessionStore
	accounts repository.AccountStore
	opts     Options
}

func NewAuthenticateSessionHandler(sessions repository.SessionStore, accounts repository.AccountStore, opts Options) *AuthenticateSessionHandler {
	return &AuthenticateSessionHandler{sessions: sessions, accounts: accounts, opts: opts.withDefaults()}
}

// Principal is who a bearer token belongs to.
type Principal struct {
	Session *session.Session
	Account *account.Account
}

func (p *Principal) Actor() Actor {
	return Actor{Email: p.Account.Email, Role: p.Account.Role}
}

// Handle resolves a raw bearer token. Every failure is ErrUnauthorized.
func (h *AuthenticateSessionHandler) Handle(ctx context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, domainErr.ErrUnauthorized
	}
	sess, err := h.sessions.GetSessionByTokenHash(ctx, crypto.HashToken(rawToken))
	if errors.Is(err, domainErr.ErrSessionNotFound) {
		return nil, domainErr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !sess.IsActive(h.opts.Now()) {
		return nil, domainErr.ErrUnauthorized
	}

	acc, err := h.accounts.GetAccountByID(ctx, sess.AccountID)
	if errors.Is(err, domainErr.ErrAccountNotFound) {
		return nil, domainErr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &Principal{Session: sess, Account: acc}, nil
}
