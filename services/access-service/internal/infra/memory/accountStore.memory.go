package memory

import (
	"context"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/google/uuid"
)

type AccountStore struct {
	db  *DB
	now func() time.Time
}

func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db, now: time.Now}
}

func (s *AccountStore) CreateAccount(ctx context.Context, acc *account.Account) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.accountsByEmail[acc.Email]; exists {
		return domainErr.ErrEmailAlreadyExists
	}
	s.db.accounts[acc.ID] = *acc
	s.db.accountsByEmail[acc.Email] = acc.ID

	id, email := acc.ID, acc.Email
	onRollback(ctx, func() {
		delete(s.db.accounts, id)
		delete(s.db.accountsByEmail, email)
	})
	return nil
}

func (s *AccountStore) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	id, ok := s.db.accountsByEmail[email]
	if !ok {
		return nil, domainErr.ErrAccountNotFound
	}
	acc := s.db.accounts[id]
	return &acc, nil
}

func (s *AccountStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	acc, ok := s.db.accounts[id]
	if !ok {
		return nil, domainErr.ErrAccountNotFound
	}
	return &acc, nil
}

func (s *AccountStore) EstablishPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.accounts[id]
	if !ok {
		return domainErr.ErrAccountNotFound
	}
	if current.HasCredentials() {
		return domainErr.ErrInvalidState
	}
	updated := current
	updated.PasswordHash = passwordHash
	updated.UpdatedAt = s.now().UTC()
	s.db.accounts[id] = updated
	onRollback(ctx, func() { s.db.accounts[id] = current })
	return nil
}
