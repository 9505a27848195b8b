package config

import (
	"strings"
	"testing"

	shared "github.com/Tanmoy095/InvestHub/shared/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EmailQueue != "email_jobs" || cfg.ConsumerGroup != "notification-service" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Common.KAFKA_BROKERS) != 2 || cfg.Common.KAFKA_BROKERS[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Common.KAFKA_BROKERS)
	}
	if cfg.SMTPHost != "" {
		t.Errorf("expected log-only mail by default, got host %q", cfg.SMTPHost)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Common:        &shared.CommonConfig{KAFKA_BROKERS: []string{"k:9092"}, KAFKA_TOPIC: "access-requests"},
			EmailQueue:    "email_jobs",
			InviteBaseURL: "https://app.investhub.test/invite",
			SMTPPort:      587,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no brokers", func(c *Config) { c.Common.KAFKA_BROKERS = nil }, "KAFKA_BROKERS"},
		{"relative invite url", func(c *Config) { c.InviteBaseURL = "/invite" }, "INVITE_BASE_URL"},
		{"bad smtp port", func(c *Config) { c.SMTPHost = "smtp.test"; c.SMTPPort = 0 }, "SMTP_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
