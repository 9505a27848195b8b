// services/notification-service/internal/worker/email_worker.go
package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Tanmoy095/InvestHub/services/notification-service/internal/mailer"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailWorker drains the email queue. Each delivery is acked only after the
// mailer succeeded.
type EmailWorker struct {
	mailer mailer.Mailer
	logger *slog.Logger
}

func NewEmailWorker(m mailer.Mailer, logger *slog.Logger) *EmailWorker {
	return &EmailWorker{mailer: m, logger: logger}
}

// Run blocks until ctx is cancelled or the delivery channel closes.
func (w *EmailWorker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("email worker stopping")
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("email queue channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *EmailWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job contracts.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Error("discarding malformed email job", slog.Any("error", err))
		if err := d.Reject(false); err != nil {
			w.logger.Error("reject failed", slog.Any("error", err))
		}
		return
	}

	if err := w.mailer.Send(ctx, job); err != nil {
		// One retry through the broker, then give up.
		requeue := !d.Redelivered
		w.logger.Error("email delivery failed",
			slog.String("type", job.Type),
			slog.String("to", job.To),
			slog.Bool("requeue", requeue),
			slog.Any("error", err),
		)
		if err := d.Nack(false, requeue); err != nil {
			w.logger.Error("nack failed", slog.Any("error", err))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		w.logger.Error("ack failed", slog.Any("error", err))
		return
	}
	w.logger.Info("email sent", slog.String("type", job.Type), slog.String("to", job.To))
}
