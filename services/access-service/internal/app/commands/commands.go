// services/access-service/internal/app/commands/commands.go
package commands

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
	domainErr "github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/errors"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/policy"
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/ports/events"
	"github.com/Tanmoy095/InvestHub/shared/contracts"
)

// Actor is the authenticated caller of an administrative command.
type Actor struct {
	Email string
	Role  account.Role
}

func (a Actor) requireReviewer() error {
	if !policy.CanReviewRequests(a.Role) {
		return domainErr.ErrForbidden
	}
	return nil
}

// Options carries the collaborators every command may use. Zero values are fine.
type Options struct {
	Publisher events.Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// publish runs after the transaction committed. A broker outage must not undo
// a decision that is already durable, so failures are only logged.
func (o Options) publish(ctx context.Context, event contracts.AccessRequestEvent) {
	if o.Publisher == nil {
		return
	}
	if err := o.Publisher.Publish(ctx, event.Email, event); err != nil {
		o.Logger.WarnContext(ctx, "failed to publish access request event",
			slog.String("event", event.Event),
			slog.String("request_id", event.RequestID),
			slog.Any("error", err),
		)
	}
}
