package auth

import (
	stdErrors "errors"
	"net/http"

	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
)

//We must prevent User Enumeration. If an attacker tries to log in
// with admin@example.com and gets "Invalid Password", but tries random@example.com
// and gets "Account Not Found", they now know admin@example.com exists.
// This mapper flattens those errors.

//Why app/auth/?
//❌ Not domain → domain should not know about HTTP status codes
//❌ Not transport → transport should not contain business rules
//✅ Application layer → translates domain errors → transport-safe errors

// Mapped is a transport-safe rendition of an error.
type Mapped struct {
	Status  int
	Message string
}

// Internal reports whether the caller should log the original error.
func (m Mapped) Internal() bool { return m.Status >= http.StatusInternalServerError }

var table = []struct {
	err    error
	status int
	msg    string
}{
	//  Authentication failures (flattened to prevent enumeration)
	{domainErr.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
	{domainErr.ErrAccountNotFound, http.StatusUnauthorized, "invalid email or password"},
	// Pending and rejected share one message on purpose.
	{domainErr.ErrPendingApproval, http.StatusForbidden, "account pending approval"},
	{domainErr.ErrRateLimited, http.StatusTooManyRequests, "too many attempts, try again later"},
	{domainErr.ErrInvalidInvite, http.StatusUnauthorized, "invitation is invalid or has expired"},
	{domainErr.ErrUnauthorized, http.StatusUnauthorized, "authentication required"},
	{domainErr.ErrSessionNotFound, http.StatusUnauthorized, "authentication required"},
	{domainErr.ErrForbidden, http.StatusForbidden, "administrator privileges required"},

	// Intake / approval
	{domainErr.ErrDuplicateRequest, http.StatusBadRequest, "an access request already exists for this email"},
	{domainErr.ErrRequestNotFound, http.StatusNotFound, "access request not found"},
	{domainErr.ErrAlreadyDecided, http.StatusConflict, "access request has already been decided"},
	{domainErr.ErrInvalidState, http.StatusConflict, "operation not allowed in the current state"},
	{domainErr.ErrEmailAlreadyExists, http.StatusConflict, "an account already exists for this email"},
}

// MapError turns any error into a status and a message safe to show a client.
func MapError(err error) Mapped {
	if err == nil {
		return Mapped{Status: http.StatusOK}
	}
	for _, row := range table {
		if stdErrors.Is(err, row.err) {
			return Mapped{Status: row.status, Message: row.msg}
		}
	}
	// Validation messages are written for the client, so they pass through.
	if stdErrors.Is(err, domainErr.ErrInvalidInput) {
		return Mapped{Status: http.StatusBadRequest, Message: err.Error()}
	}
	//  Fallback (never leak internals)
	return Mapped{Status: http.StatusInternalServerError, Message: "internal error"}
}
