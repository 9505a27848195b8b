// services/notification-service/internal/dispatch/bridge.go
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Tanmoy095/InvestHub/shared/contracts"
)

// JobPublisher hands a job to the work queue. shared/rabbitmq.RabbitmqClient satisfies it.
type JobPublisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

// Bridge translates facts from Kafka (access request events) into tasks on
// RabbitMQ (email jobs).
type Bridge struct {
	publisher     JobPublisher
	queue         string
	inviteBaseURL string
	adminEmail    string
	logger        *slog.Logger
}

func NewBridge(publisher JobPublisher, queue, inviteBaseURL, adminEmail string, logger *slog.Logger) *Bridge {
	return &Bridge{
		publisher:     publisher,
		queue:         queue,
		inviteBaseURL: inviteBaseURL,
		adminEmail:    adminEmail,
		logger:        logger,
	}
}

// Handle matches shared/kafka.Handler. Undecodable events are dropped: retrying
// a poison message never helps. Publish failures are returned so the consumer
// retries the same event before moving on.
func (b *Bridge) Handle(ctx context.Context, key, value []byte) error {
	var event contracts.AccessRequestEvent
	if err := json.Unmarshal(value, &event); err != nil {
		b.logger.ErrorContext(ctx, "dropping undecodable event", slog.String("key", string(key)), slog.Any("error", err))
		return nil
	}

	job, ok, err := b.jobFor(event)
	if err != nil {
		b.logger.ErrorContext(ctx, "dropping event", slog.String("event", event.Event), slog.Any("error", err))
		return nil
	}
	if !ok {
		b.logger.DebugContext(ctx, "ignoring event", slog.String("event", event.Event))
		return nil
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	if err := b.publisher.Publish(ctx, b.queue, body); err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	b.logger.InfoContext(ctx, "email job queued",
		slog.String("event", event.Event),
		slog.String("type", job.Type),
		slog.String("request_id", event.RequestID),
	)
	return nil
}

func (b *Bridge) jobFor(event contracts.AccessRequestEvent) (contracts.EmailJob, bool, error) {
	switch event.Event {
	case contracts.EventAccessRequestApproved:
		if event.InviteToken == "" {
			return contracts.EmailJob{}, false, fmt.Errorf("approved event %s carries no invite token", event.RequestID)
		}
		link, err := b.inviteLink(event.InviteToken)
		if err != nil {
			return contracts.EmailJob{}, false, err
		}
		expires := ""
		if event.InviteExpiresAt != nil {
			expires = event.InviteExpiresAt.UTC().Format(time.RFC1123)
		}
		body, err := render("invite", map[string]any{"FullName": event.FullName, "Link": link, "ExpiresAt": expires})
		if err != nil {
			return contracts.EmailJob{}, false, err
		}
		return contracts.EmailJob{Type: contracts.EmailJobInvite, To: event.Email, Subject: "Your InvestHub access was approved", Body: body}, true, nil

	case contracts.EventAccessRequestRejected:
		body, err := render("rejection", map[string]any{"FullName": event.FullName, "Reason": event.Reason})
		if err != nil {
			return contracts.EmailJob{}, false, err
		}
		return contracts.EmailJob{Type: contracts.EmailJobRejection, To: event.Email, Subject: "Your InvestHub access request", Body: body}, true, nil

	case contracts.EventAccessRequestSubmitted:
		if b.adminEmail == "" {
			return contracts.EmailJob{}, false, nil
		}
		body, err := render("admin_alert", map[string]any{"FullName": event.FullName, "Email": event.Email, "RequestID": event.RequestID})
		if err != nil {
			return contracts.EmailJob{}, false, err
		}
		return contracts.EmailJob{Type: contracts.EmailJobAdminAlert, To: b.adminEmail, Subject: "New InvestHub access request", Body: body}, true, nil
	}
	return contracts.EmailJob{}, false, nil
}

func (b *Bridge) inviteLink(token string) (string, error) {
	u, err := url.Parse(b.inviteBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid invite base url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
