// services/access-service/internal/domain/errors/errors.domain.go
package errors

import "errors"

// Standard Sentinel Errors
// These allow the transport layer to map internal logic to status codes
// (e.g., ErrInvalidCredentials -> 401 Unauthorized).

var (
	// Intake / Approval Errors
	ErrDuplicateRequest = errors.New("an access request already exists for this email")
	ErrRequestNotFound  = errors.New("access request not found")
	ErrAlreadyDecided   = errors.New("access request has already been decided")

	// Authentication Errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidInvite      = errors.New("invitation is invalid or has expired")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRateLimited        = errors.New("too many attempts, try again later")

	// System/Validation Errors
	ErrInvalidInput        = errors.New("invalid input arguments")
	ErrInternalServerError = errors.New("internal server error")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrForbidden           = errors.New("operation requires administrator privileges")
	ErrInvalidState        = errors.New("invalid state")
)
