package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/app/commands"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/infra/memory"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/crypto"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@investhub.test"
	adminPassword = "admin-password"
)

// inviteOutbox stands in for the event bus: invite tokens reach applicants
// through published events, never through the admin's HTTP response.
type inviteOutbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (o *inviteOutbox) Publish(ctx context.Context, key string, value interface{}) error {
	event := value.(contracts.AccessRequestEvent)
	if event.InviteToken == "" {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[event.Email] = event.InviteToken
	return nil
}

func (o *inviteOutbox) token(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tokens[email]
}

type testServer struct {
	t      *testing.T
	router http.Handler
	outbox *inviteOutbox
}

func newTestServer(t *testing.T, handlerOpts ...HandlerOption) *testServer {
	t.Helper()
	db := memory.NewDB()
	requests := memory.NewAccessRequestStore(db)
	accounts := memory.NewAccountStore(db)
	sessions := memory.NewSessionStore(db)
	auditLog := memory.NewAuditStore(db)
	tx := memory.NewTxManager(db)
	hasher := crypto.NewArgon2Hasher(&crypto.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	signer := crypto.NewJWTInviteSigner("handler-test-secret-0123456789abcdef", "investhub-test", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	outbox := &inviteOutbox{tokens: map[string]string{}}
	opts := commands.Options{Logger: logger, Publisher: outbox}

	_, _, err := commands.NewEnsureAdminHandler(accounts, auditLog, tx, hasher, opts).
		Handle(context.Background(), commands.EnsureAdminParams{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	h := NewHandler(Commands{
		Submit:       commands.NewSubmitAccessRequestHandler(requests, accounts, auditLog, tx, opts),
		List:         commands.NewListAccessRequestsHandler(requests),
		Approve:      commands.NewApproveAccessRequestHandler(requests, accounts, auditLog, tx, signer, opts),
		Reject:       commands.NewRejectAccessRequestHandler(requests, auditLog, tx, opts),
		Clear:        commands.NewClearAccessRequestHandler(requests, auditLog, tx, opts),
		Reissue:      commands.NewReissueInviteHandler(requests, accounts, auditLog, tx, signer, opts),
		Accept:       commands.NewAcceptInvitationHandler(accounts, auditLog, tx, hasher, signer, opts),
		Login:        commands.NewLoginUserHandler(accounts, requests, sessions, auditLog, tx, hasher, nil, 24*time.Hour, opts),
		Authenticate: commands.NewAuthenticateSessionHandler(sessions, accounts, opts),
		Logout:       commands.NewLogoutUserHandler(sessions, auditLog, tx, opts),
	}, logger, handlerOpts...)

	return &testServer{t: t, router: NewRouter(h), outbox: outbox}
}

// do sends a JSON request and decodes the JSON response body (if any) into a map.
func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/sessions", "", jsonBody{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, code, "login %s: %v", email, body)
	return body["token"].(string)
}

type jsonBody = map[string]any

func TestAccessFlow_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(adminEmail, adminPassword)

	// Apply.
	code, body := s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": "new@example.com", "fullName": "New Person"})
	require.Equal(t, http.StatusCreated, code)
	requestID, _ := body["requestId"].(string)
	require.NotEmpty(t, requestID)

	code, body = s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": "NEW@example.com", "fullName": "New Person"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "an access request already exists for this email", body["error"])

	// Not approved yet.
	code, body = s.do(http.MethodPost, "/sessions", "", jsonBody{"email": "new@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "account pending approval", body["error"])

	// Review.
	code, body = s.do(http.MethodPost, "/access-requests/"+requestID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.NotContains(t, body, "inviteToken")
	assert.NotEmpty(t, body["inviteExpiresAt"])
	inviteToken := s.outbox.token("new@example.com")
	require.NotEmpty(t, inviteToken)
	assert.Equal(t, "user", body["account"].(map[string]any)["role"])

	code, _ = s.do(http.MethodPost, "/access-requests/"+requestID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, code)

	// Establish credentials.
	code, body = s.do(http.MethodPost, "/invites/accept", "", jsonBody{"token": inviteToken, "password": "new-person-password"})
	require.Equal(t, http.StatusOK, code, body)
	assert.NotContains(t, body["account"], "passwordHash")

	// Wrong password and unknown email are indistinguishable.
	code, wrong := s.do(http.MethodPost, "/sessions", "", jsonBody{"email": "new@example.com", "password": "not-it"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, unknown := s.do(http.MethodPost, "/sessions", "", jsonBody{"email": "nobody@example.com", "password": "not-it"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, wrong, unknown)
	assert.Equal(t, "invalid email or password", wrong["error"])

	token := s.login("new@example.com", "new-person-password")
	assert.GreaterOrEqual(t, len(token), 43)

	code, body = s.do(http.MethodGet, "/sessions/current", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "new@example.com", body["account"].(map[string]any)["email"])

	// Regular users cannot review.
	code, _ = s.do(http.MethodGet, "/access-requests", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, "/sessions/current", token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodGet, "/sessions/current", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestReissueInvite(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(adminEmail, adminPassword)

	_, body := s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": "lost@example.com", "fullName": "Lost Mail"})
	requestID := body["requestId"].(string)

	// Nothing to reissue before approval.
	code, _ := s.do(http.MethodPost, "/access-requests/"+requestID+"/invite", adminToken, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/access-requests/"+requestID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	first := s.outbox.token("lost@example.com")

	code, body = s.do(http.MethodPost, "/access-requests/"+requestID+"/invite", adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.NotContains(t, body, "inviteToken")
	second := s.outbox.token("lost@example.com")
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	code, body = s.do(http.MethodPost, "/invites/accept", "", jsonBody{"token": second, "password": "found-it-again"})
	require.Equal(t, http.StatusOK, code, body)
	s.login("lost@example.com", "found-it-again")

	code, _ = s.do(http.MethodPost, "/access-requests/"+requestID+"/invite", adminToken, nil)
	assert.Equal(t, http.StatusConflict, code)

	memberToken := s.login("lost@example.com", "found-it-again")
	code, _ = s.do(http.MethodPost, "/access-requests/"+requestID+"/invite", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestInviteTokensInResponseWhenEnabled(t *testing.T) {
	s := newTestServer(t, WithInviteTokens(true))
	adminToken := s.login(adminEmail, adminPassword)

	_, body := s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": "dev@example.com", "fullName": "Dev"})
	code, body := s.do(http.MethodPost, "/access-requests/"+body["requestId"].(string)+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, s.outbox.token("dev@example.com"), body["inviteToken"])
}

func TestRejectAndClear(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(adminEmail, adminPassword)

	_, body := s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": "no@example.com", "fullName": "No"})
	requestID := body["requestId"].(string)

	// Reject without a body.
	code, _ := s.do(http.MethodPost, "/access-requests/"+requestID+"/reject", adminToken, nil)
	require.Equal(t, http.StatusNoContent, code)

	code, body = s.do(http.MethodPost, "/sessions", "", jsonBody{"email": "no@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "account pending approval", body["error"])

	code, body = s.do(http.MethodGet, "/access-requests/"+requestID, adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "rejected", body["status"])

	code, _ = s.do(http.MethodDelete, "/access-requests/"+requestID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodGet, "/access-requests/"+requestID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": "no@example.com", "fullName": "No"})
	assert.Equal(t, http.StatusCreated, code)
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(adminEmail, adminPassword)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
	}{
		{"invalid email", http.MethodPost, "/access-requests", "", jsonBody{"email": "bad", "fullName": "X"}, http.StatusBadRequest},
		{"missing login fields", http.MethodPost, "/sessions", "", jsonBody{"email": "a@example.com"}, http.StatusBadRequest},
		{"no bearer", http.MethodGet, "/access-requests", "", nil, http.StatusUnauthorized},
		{"bogus bearer", http.MethodGet, "/access-requests", "bogus", nil, http.StatusUnauthorized},
		{"unparsable id", http.MethodGet, "/access-requests/not-a-uuid", adminToken, nil, http.StatusNotFound},
		{"unknown id", http.MethodPost, "/access-requests/8a1f0c7e-4a55-4a9b-9d4e-1d2f3a4b5c6d/approve", adminToken, nil, http.StatusNotFound},
		{"bad invite", http.MethodPost, "/invites/accept", "", jsonBody{"token": "x.y.z", "password": "long-enough"}, http.StatusUnauthorized},
		{"unknown status filter", http.MethodGet, "/access-requests?status=archived", adminToken, nil, http.StatusBadRequest},
		{"health", http.MethodGet, "/healthz", "", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, code, body)
			if code >= 400 {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestListAccessRequests(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(adminEmail, adminPassword)
	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		code, _ := s.do(http.MethodPost, "/access-requests", "", jsonBody{"email": email, "fullName": "X"})
		require.Equal(t, http.StatusCreated, code)
	}

	req := httptest.NewRequest(http.MethodGet, "/access-requests?status=pending", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []accessRequestDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c@example.com", "a@example.com", "b@example.com"},
		[]string{list[0].Email, list[1].Email, list[2].Email})
}
