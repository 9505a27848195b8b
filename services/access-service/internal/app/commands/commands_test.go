package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/infra/memory"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/ratelimit"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
)

var cheapArgon2 = &crypto.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

const (
	testInviteSecret = "test-secret-that-is-long-enough-32b"
	testInviteIssuer = "investhub-test"
)

var admin = Actor{Email: "admin@investhub.test", Role: account.RoleAdmin}

// --- fakes ---

type fakePublisher struct {
	mu     sync.Mutex
	events []contracts.AccessRequestEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, value.(contracts.AccessRequestEvent))
	return nil
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Event)
	}
	return names
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

type failingSigner struct{ crypto.InviteSigner }

func (failingSigner) SignInvite(context.Context, crypto.InviteClaims) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signing key unavailable")
}

// --- fixture ---

type fixture struct {
	now       time.Time
	db        *memory.DB
	requests  *memory.AccessRequestStore
	accounts  *memory.AccountStore
	tx        *memory.TxManager
	auditLog  *memory.AuditStore
	publisher *fakePublisher
	signer    crypto.InviteSigner
	opts      Options

	submit       *SubmitAccessRequestHandler
	list         *ListAccessRequestsHandler
	approve      *ApproveAccessRequestHandler
	reject       *RejectAccessRequestHandler
	clear        *ClearAccessRequestHandler
	reissue      *ReissueInviteHandler
	accept       *AcceptInvitationHandler
	login        *LoginUserHandler
	authenticate *AuthenticateSessionHandler
	logout       *LogoutUserHandler
	ensureAdmin  *EnsureAdminHandler
}

func newFixture(t *testing.T, limiter ratelimit.Limiter) *fixture {
	t.Helper()
	f := &fixture{
		now:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		db:        memory.NewDB(),
		publisher: &fakePublisher{},
		signer:    crypto.NewJWTInviteSigner(testInviteSecret, testInviteIssuer, 72*time.Hour),
	}
	f.requests = memory.NewAccessRequestStore(f.db)
	f.accounts = memory.NewAccountStore(f.db)
	f.auditLog = memory.NewAuditStore(f.db)
	f.tx = memory.NewTxManager(f.db)
	requests, accounts, tx := f.requests, f.accounts, f.tx
	f.opts = Options{Publisher: f.publisher, Now: func() time.Time { return f.now }}
	sessions := memory.NewSessionStore(f.db)
	hasher := crypto.NewArgon2Hasher(cheapArgon2)
	opts := f.opts

	f.submit = NewSubmitAccessRequestHandler(requests, accounts, f.auditLog, tx, opts)
	f.list = NewListAccessRequestsHandler(requests)
	f.approve = NewApproveAccessRequestHandler(requests, accounts, f.auditLog, tx, f.signer, opts)
	f.reject = NewRejectAccessRequestHandler(requests, f.auditLog, tx, opts)
	f.clear = NewClearAccessRequestHandler(requests, f.auditLog, tx, opts)
	f.reissue = NewReissueInviteHandler(requests, accounts, f.auditLog, tx, f.signer, opts)
	f.accept = NewAcceptInvitationHandler(accounts, f.auditLog, tx, hasher, f.signer, opts)
	f.login = NewLoginUserHandler(accounts, requests, sessions, f.auditLog, tx, hasher, limiter, 7*24*time.Hour, opts)
	f.authenticate = NewAuthenticateSessionHandler(sessions, accounts, opts)
	f.logout = NewLogoutUserHandler(sessions, f.auditLog, tx, opts)
	f.ensureAdmin = NewEnsureAdminHandler(accounts, f.auditLog, tx, hasher, opts)
	return f
}

func (f *fixture) mustSubmit(t *testing.T, email string) *access.AccessRequest {
	t.Helper()
	req, err := f.submit.Handle(context.Background(), SubmitAccessRequestParams{Email: email, FullName: "Test User"})
	if err != nil {
		t.Fatalf("submit %s: %v", email, err)
	}
	return req
}

// onboard runs submit, approve and accept invite for email.
func (f *fixture) onboard(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()
	req := f.mustSubmit(t, email)
	res, err := f.approve.Handle(ctx, ApproveAccessRequestParams{RequestID: req.ID, Actor: admin})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.accept.Handle(ctx, AcceptInvitationParams{Token: res.InviteToken, Password: password}); err != nil {
		t.Fatalf("accept invite: %v", err)
	}
}

func (f *fixture) auditActions() []string {
	events := f.auditLog.Events()
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}
