// services/access-service/internal/domain/account/account.domain.go
package account

import (
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/access"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Account is the login-capable identity. It only exists once its access
// request was approved (or it was bootstrapped as an administrator).
type Account struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	Role         Role
	PasswordHash string     // Empty until the invite flow establishes credentials
	RequestID    *uuid.UUID // Nil for bootstrapped accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FromApprovedRequest materializes the account bound to an approved request.
func FromApprovedRequest(req *access.AccessRequest, now time.Time) *Account {
	requestID := req.ID
	return &Account{
		ID:        uuid.New(),
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      RoleUser,
		RequestID: &requestID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// HasCredentials reports whether a password has been established.
func (a *Account) HasCredentials() bool { return a.PasswordHash != "" }
