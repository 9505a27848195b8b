package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/Tanmoy095/InvestHub/shared/contracts"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPMailer_Send(t *testing.T) {
	d := &fakeDialer{}
	m := NewSMTPMailerWithDialer(d, "InvestHub <no-reply@investhub.test>")

	job := contracts.EmailJob{Type: contracts.EmailJobInvite, To: "ada@example.com", Subject: "Welcome", Body: "<p>hi</p>"}
	if err := m.Send(context.Background(), job); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(d.sent))
	}
	msg := d.sent[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ada@example.com" {
		t.Errorf("unexpected To: %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Welcome" {
		t.Errorf("unexpected Subject: %v", got)
	}

	var raw bytes.Buffer
	if _, err := msg.WriteTo(&raw); err != nil {
		t.Fatalf("write message: %v", err)
	}
	if !strings.Contains(raw.String(), "text/html") {
		t.Errorf("expected an HTML body, got:\n%s", raw.String())
	}
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailerWithDialer(&fakeDialer{err: errors.New("connection refused")}, "from@investhub.test")
	if err := m.Send(context.Background(), contracts.EmailJob{To: "a@example.com"}); err == nil || !strings.Contains(err.Error(), "a@example.com") {
		t.Errorf("expected wrapped dial error, got %v", err)
	}
	if err := m.Send(context.Background(), contracts.EmailJob{}); err == nil {
		t.Error("expected error for missing recipient")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewSMTPMailerWithDialer(&fakeDialer{}, "f").Send(ctx, contracts.EmailJob{To: "a@example.com"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))
	if err := m.Send(context.Background(), contracts.EmailJob{To: "a@example.com", Subject: "Hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), `"to":"a@example.com"`) {
		t.Errorf("expected recipient in log, got %s", buf.String())
	}
}

func TestLogMailer_RedactsInviteTokens(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))
	job := contracts.EmailJob{
		To:      "new@example.com",
		Subject: "Your invite",
		Body:    `<a href="https://app.example.com/invite?token=eyJhbGciOi.payload.sig&amp;ref=mail">Set password</a>`,
	}
	if err := m.Send(context.Background(), job); err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "eyJhbGciOi") || strings.Contains(out, "payload.sig") {
		t.Errorf("invite token leaked into log: %s", out)
	}
	if !strings.Contains(out, "token=REDACTED") || !strings.Contains(out, "ref=mail") {
		t.Errorf("expected redacted link with other params intact, got %s", out)
	}
}
