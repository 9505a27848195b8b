// services/notification-service/internal/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Tanmoy095/InvestHub/shared/contracts"
	"gopkg.in/gomail.v2"
)

// Mailer delivers one email job.
type Mailer interface {
	Send(ctx context.Context, job contracts.EmailJob) error
}

// Dialer is the part of gomail.Dialer we use; swapped out in tests.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	dialer Dialer
	from   string
}

// NewSMTPMailer sends through host:port. Empty username means no SMTP AUTH.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return NewSMTPMailerWithDialer(gomail.NewDialer(host, port, username, password), from)
}

func NewSMTPMailerWithDialer(d Dialer, from string) *SMTPMailer {
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, job contracts.EmailJob) error {
	if job.To == "" {
		return errors.New("email job has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", job.To)
	msg.SetHeader("Subject", job.Subject)
	msg.SetBody("text/html", job.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", job.To, err)
	}
	return nil
}

// LogMailer stands in when no SMTP host is configured (local development).
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, job contracts.EmailJob) error {
	m.logger.InfoContext(ctx, "email (not sent, no SMTP host)",
		slog.String("type", job.Type),
		slog.String("to", job.To),
		slog.String("subject", job.Subject),
		slog.String("body", redactTokens(job.Body)),
	)
	return nil
}

var tokenParam = regexp.MustCompile(`(token=)[^&"'<>\s]+`)

// redactTokens strips invite tokens from link query strings; a logged invite
// link would let anyone with log access set the applicant's password.
func redactTokens(body string) string {
	return tokenParam.ReplaceAllString(body, "${1}REDACTED")
}
