package account

import (
	"fmt"
	"unicode/utf8"

	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 256
)

// ValidatePassword enforces the length policy, counted in characters.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domainErr.ErrInvalidInput, MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", domainErr.ErrInvalidInput, MaxPasswordLength)
	}
	return nil
}
