// services/access-service/internal/app/commands/login_user.commands.go
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/audit"
	domainError "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/session"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/ratelimit"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/repository"
	"github.com/google/uuid"
)

type LoginUserHandler struct {
	accounts     repository.AccountStore
	requests     repository.AccessRequestStore
	sessions     repository.SessionStore
	audit        repository.AuditStore
	tx           repository.TransactionManager
	passwordHash crypto.PasswordHasher
	limiter      ratelimit.Limiter
	sessionTTL   time.Duration
	opts         Options

	dummyOnce sync.Once
	dummyHash string
}

func NewLoginUserHandler(
	accounts repository.AccountStore,
	requests repository.AccessRequestStore,
	sessions repository.SessionStore,
	auditRepo repository.AuditStore,
	tx repository.TransactionManager,
	passwordHash crypto.PasswordHasher,
	limiter ratelimit.Limiter,
	sessionTTL time.Duration,
	opts Options,
) *LoginUserHandler {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	return &LoginUserHandler{
		accounts:     accounts,
		requests:     requests,
		sessions:     sessions,
		audit:        auditRepo,
		tx:           tx,
		passwordHash: passwordHash,
		limiter:      limiter,
		sessionTTL:   sessionTTL,
		opts:         opts.withDefaults(),
	}
}

type LoginParams struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	Token     string // raw bearer token, returned exactly once
	ExpiresAt time.Time
	Session   *session.Session
	Account   *account.Account
}

// Handle is the credential gate. Only accounts, which exist only for approved
// requests, can ever get a session.
func (h *LoginUserHandler) Handle(ctx context.Context, params LoginParams) (*LoginResult, error) {
	email := access.NormalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domainError.ErrInvalidInput)
	}

	if err := h.checkRateLimit(ctx, email, params.IPAddress); err != nil {
		return nil, err
	}

	acc, err := h.accounts.GetAccountByEmail(ctx, email)
	switch {
	case errors.Is(err, domainError.ErrAccountNotFound):
		h.spendVerifyTime(ctx, params.Password)
		return nil, h.explainMissingAccount(ctx, email)
	case err != nil:
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	// No password yet means the invite was never accepted.
	if !acc.HasCredentials() {
		h.spendVerifyTime(ctx, params.Password)
		return nil, domainError.ErrInvalidCredentials
	}
	match, err := h.passwordHash.VerifyPassword(ctx, params.Password, acc.PasswordHash)
	if err != nil {
		h.opts.Logger.ErrorContext(ctx, "stored password hash is unreadable",
			slog.String("account_id", acc.ID.String()), slog.Any("error", err))
		return nil, domainError.ErrInvalidCredentials
	}
	if !match {
		return nil, domainError.ErrInvalidCredentials
	}

	// Opaque token (stateful); only its hash is stored.
	rawToken, err := crypto.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	now := h.opts.Now().UTC()
	sess := &session.Session{
		ID:           uuid.New(),
		AccountID:    acc.ID,
		AccountEmail: acc.Email,
		TokenHash:    crypto.HashToken(rawToken),
		IssuedAt:     now,
		ExpiresAt:    now.Add(h.sessionTTL),
		UserAgent:    params.UserAgent,
		IPAddress:    params.IPAddress,
	}

	err = h.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := h.sessions.CreateSession(ctx, sess); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		event := audit.New(audit.ActionUserLogin, acc.Email, &acc.ID, now)
		event.IPAddress = params.IPAddress
		event.Metadata["session_id"] = sess.ID.String()
		return h.audit.Append(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     rawToken,
		ExpiresAt: sess.ExpiresAt,
		Session:   sess,
		Account:   acc,
	}, nil
}

// spendVerifyTime runs one verification against a throwaway hash so that
// unknown emails and password-less accounts cost the same as a wrong password.
func (h *LoginUserHandler) spendVerifyTime(ctx context.Context, password string) {
	h.dummyOnce.Do(func() {
		hash, err := h.passwordHash.HashPassword(ctx, "no-such-account")
		if err != nil {
			h.opts.Logger.WarnContext(ctx, "failed to prepare dummy password hash", slog.Any("error", err))
			return
		}
		h.dummyHash = hash
	})
	if h.dummyHash != "" {
		_, _ = h.passwordHash.VerifyPassword(ctx, password, h.dummyHash)
	}
}

// explainMissingAccount distinguishes "still waiting for review" from "never applied".
// Pending and rejected deliberately produce the same error.
func (h *LoginUserHandler) explainMissingAccount(ctx context.Context, email string) error {
	req, err := h.requests.GetAccessRequestByEmail(ctx, email)
	if errors.Is(err, domainError.ErrRequestNotFound) {
		return domainError.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load access request: %w", err)
	}
	if !req.IsApproved() {
		return domainError.ErrPendingApproval
	}
	// Approved but no account: only possible while the approval commits.
	return domainError.ErrAccountNotFound
}

// checkRateLimit counts every attempt per email and per client address.
// The limiter fails open: an outage in Redis must not lock everyone out.
func (h *LoginUserHandler) checkRateLimit(ctx context.Context, email, ip string) error {
	keys := []string{"login:email:" + email}
	if ip = strings.TrimSpace(ip); ip != "" {
		keys = append(keys, "login:ip:"+ip)
	}
	for _, key := range keys {
		allowed, err := h.limiter.Allow(ctx, key)
		if err != nil {
			h.opts.Logger.WarnContext(ctx, "rate limiter unavailable", slog.Any("error", err))
			continue
		}
		if !allowed {
			return domainError.ErrRateLimited
		}
	}
	return nil
}
