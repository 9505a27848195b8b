// services/access-service/internal/ports/crypto/invite_signer.crypto.go

package crypto

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const inviteAudience = "invite"

// InviteClaims is what an invite link proves: which approved account may set a password.
type InviteClaims struct {
	AccountID uuid.UUID
	Email     string
}

// InviteSigner mints and checks the tamper-evident tokens embedded in invite links.
type InviteSigner interface {
	SignInvite(ctx context.Context, claims InviteClaims) (token string, expiresAt time.Time, err error)
	// VerifyInvite returns ErrInvalidInvite for bad signatures, wrong audience or expiry.
	VerifyInvite(ctx context.Context, token string) (*InviteClaims, error)
}

type inviteJWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwtInviteSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTInviteSigner signs invites with HS256. The invite stays single-use because
// accepting it only works while the account has no password yet.
func NewJWTInviteSigner(secret, issuer string, ttl time.Duration) InviteSigner {
	return &jwtInviteSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *jwtInviteSigner) SignInvite(ctx context.Context, claims InviteClaims) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, inviteJWTClaims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   claims.AccountID.String(),
			Audience:  jwt.ClaimStrings{inviteAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign invite: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *jwtInviteSigner) VerifyInvite(ctx context.Context, raw string) (*InviteClaims, error) {
	var claims inviteJWTClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(inviteAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(domainErr.ErrInvalidInvite, err)
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Join(domainErr.ErrInvalidInvite, err)
	}
	return &InviteClaims{AccountID: accountID, Email: claims.Email}, nil
}
