package memory

import (
	"context"
	"slices"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/google/uuid"
)

type AccessRequestStore struct {
	db *DB
}

func NewAccessRequestStore(db *DB) *AccessRequestStore {
	return &AccessRequestStore{db: db}
}

func (s *AccessRequestStore) CreateAccessRequest(ctx context.Context, req *access.AccessRequest) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.requestsByEmail[req.Email]; exists {
		return domainErr.ErrDuplicateRequest
	}
	s.db.requests[req.ID] = *req
	s.db.requestsByEmail[req.Email] = req.ID
	s.db.requestOrder = append(s.db.requestOrder, req.ID)

	id, email := req.ID, req.Email
	onRollback(ctx, func() { s.db.removeRequest(id, email) })
	return nil
}

func (s *AccessRequestStore) GetAccessRequestByID(ctx context.Context, id uuid.UUID) (*access.AccessRequest, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	req, ok := s.db.requests[id]
	if !ok {
		return nil, domainErr.ErrRequestNotFound
	}
	return &req, nil
}

func (s *AccessRequestStore) GetAccessRequestByEmail(ctx context.Context, email string) (*access.AccessRequest, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	id, ok := s.db.requestsByEmail[email]
	if !ok {
		return nil, domainErr.ErrRequestNotFound
	}
	req := s.db.requests[id]
	return &req, nil
}

func (s *AccessRequestStore) ListAccessRequests(ctx context.Context, status access.RequestStatus) ([]*access.AccessRequest, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	result := make([]*access.AccessRequest, 0, len(s.db.requestOrder))
	for _, id := range s.db.requestOrder {
		req := s.db.requests[id]
		if status != "" && req.Status != status {
			continue
		}
		result = append(result, &req)
	}
	return result, nil
}

func (s *AccessRequestStore) DecideAccessRequest(ctx context.Context, req *access.AccessRequest) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.requests[req.ID]
	if !ok {
		return domainErr.ErrRequestNotFound
	}
	// Compare-and-swap: only a pending row can be decided.
	if !current.IsPending() {
		return domainErr.ErrAlreadyDecided
	}
	s.db.requests[req.ID] = *req
	onRollback(ctx, func() { s.db.requests[current.ID] = current })
	return nil
}

func (s *AccessRequestStore) DeleteRejectedAccessRequest(ctx context.Context, id uuid.UUID) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.requests[id]
	if !ok {
		return domainErr.ErrRequestNotFound
	}
	if !current.IsRejected() {
		return domainErr.ErrInvalidState
	}
	position := slices.Index(s.db.requestOrder, id)
	s.db.removeRequest(id, current.Email)
	onRollback(ctx, func() {
		s.db.requests[current.ID] = current
		s.db.requestsByEmail[current.Email] = current.ID
		s.db.requestOrder = slices.Insert(s.db.requestOrder, min(position, len(s.db.requestOrder)), current.ID)
	})
	return nil
}

// removeRequest expects db.mu to be held.
func (db *DB) removeRequest(id uuid.UUID, email string) {
	delete(db.requests, id)
	if db.requestsByEmail[email] == id {
		delete(db.requestsByEmail, email)
	}
	db.requestOrder = slices.DeleteFunc(db.requestOrder, func(other uuid.UUID) bool { return other == id })
}
