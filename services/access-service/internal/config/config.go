// services/access-service/internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	shared "github.com/Tanmoy095/InvestHub/shared/config"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the access-service settings on top of the shared infrastructure config.
type Config struct {
	Common *shared.CommonConfig

	HTTPAddr    string
	StoreDriver string

	SessionTTL time.Duration

	InviteSecret string
	InviteIssuer string
	InviteTTL    time.Duration

	// Dev only: echo invite tokens in admin responses instead of relying on email.
	ExposeInviteTokens bool

	// Bootstrap administrator. Password or PasswordHash (argon2id/bcrypt), not both.
	AdminEmail        string
	AdminFullName     string
	AdminPassword     string
	AdminPasswordHash string

	// Login hardening: attempts per window, per email and per client IP. 0 disables.
	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
}

// Load reads the environment (after godotenv populated it from .env, if present).
func Load() (*Config, error) {
	v := shared.NewViper()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("INVITE_ISSUER", "investhub-access")
	v.SetDefault("INVITE_TTL", 72*time.Hour)
	v.SetDefault("ADMIN_FULL_NAME", "Platform Administrator")
	v.SetDefault("LOGIN_ATTEMPT_LIMIT", 10)
	v.SetDefault("LOGIN_ATTEMPT_WINDOW", 15*time.Minute)

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Common:             shared.LoadCommonConfig(v),
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		StoreDriver:        v.GetString("STORE_DRIVER"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		InviteSecret:       v.GetString("INVITE_SECRET"),
		InviteIssuer:       v.GetString("INVITE_ISSUER"),
		InviteTTL:          v.GetDuration("INVITE_TTL"),
		ExposeInviteTokens: v.GetBool("EXPOSE_INVITE_TOKENS"),
		AdminEmail:         v.GetString("ADMIN_EMAIL"),
		AdminFullName:      v.GetString("ADMIN_FULL_NAME"),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
		AdminPasswordHash:  v.GetString("ADMIN_PASSWORD_HASH"),
		LoginAttemptLimit:  v.GetInt("LOGIN_ATTEMPT_LIMIT"),
		LoginAttemptWindow: v.GetDuration("LOGIN_ATTEMPT_WINDOW"),
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver))
	}
	if len(c.InviteSecret) < 32 {
		errs = append(errs, errors.New("INVITE_SECRET must be at least 32 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.InviteTTL <= 0 {
		errs = append(errs, errors.New("INVITE_TTL must be positive"))
	}
	if c.AdminPassword != "" && c.AdminPasswordHash != "" {
		errs = append(errs, errors.New("set ADMIN_PASSWORD or ADMIN_PASSWORD_HASH, not both"))
	}
	if c.LoginAttemptLimit > 0 && c.LoginAttemptWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_ATTEMPT_WINDOW must be positive when LOGIN_ATTEMPT_LIMIT is set"))
	}
	return errors.Join(errs...)
}
