// services/notification-service/internal/config/config.go
package config

import (
	"errors"
	"net/url"

	shared "github.com/Tanmoy095/InvestHub/shared/config"
	"github.com/spf13/viper"
)

type Config struct {
	Common *shared.CommonConfig

	HealthAddr    string
	ConsumerGroup string
	EmailQueue    string

	// InviteBaseURL is the page that accepts ?token=...
	InviteBaseURL string
	// AdminEmail receives "new access request" alerts. Empty disables them.
	AdminEmail string

	// SMTP. An empty host means emails are logged, not sent.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func Load() (*Config, error) {
	v := shared.NewViper()
	v.SetDefault("HEALTH_ADDR", ":8081")
	v.SetDefault("CONSUMER_GROUP", "notification-service")
	v.SetDefault("EMAIL_QUEUE", "email_jobs")
	v.SetDefault("INVITE_BASE_URL", "http://localhost:3000/invite")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "InvestHub <no-reply@investhub.local>")

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Common:        shared.LoadCommonConfig(v),
		HealthAddr:    v.GetString("HEALTH_ADDR"),
		ConsumerGroup: v.GetString("CONSUMER_GROUP"),
		EmailQueue:    v.GetString("EMAIL_QUEUE"),
		InviteBaseURL: v.GetString("INVITE_BASE_URL"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		SMTPHost:      v.GetString("SMTP_HOST"),
		SMTPPort:      v.GetInt("SMTP_PORT"),
		SMTPUsername:  v.GetString("SMTP_USERNAME"),
		SMTPPassword:  v.GetString("SMTP_PASSWORD"),
		SMTPFrom:      v.GetString("SMTP_FROM"),
	}
}

func (c *Config) Validate() error {
	var errs []error
	if !c.Common.KafkaEnabled() {
		errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required"))
	}
	if c.EmailQueue == "" {
		errs = append(errs, errors.New("EMAIL_QUEUE must not be empty"))
	}
	if u, err := url.Parse(c.InviteBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("INVITE_BASE_URL must be an absolute URL"))
	}
	if c.SMTPHost != "" && (c.SMTPPort <= 0 || c.SMTPPort > 65535) {
		errs = append(errs, errors.New("SMTP_PORT is out of range"))
	}
	return errors.Join(errs...)
}
