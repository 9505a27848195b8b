package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Tanmoy095/InvestHub/shared/contracts"
)

type fakeQueue struct {
	queue string
	jobs  []contracts.EmailJob
	err   error
}

func (q *fakeQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	if q.err != nil {
		return q.err
	}
	q.queue = queueName
	var job contracts.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newBridge(q *fakeQueue, adminEmail string) *Bridge {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBridge(q, "email_jobs", "https://app.investhub.test/invite", adminEmail, logger)
}

func encode(t *testing.T, event contracts.AccessRequestEvent) []byte {
	t.Helper()
	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestBridge_Handle(t *testing.T) {
	expires := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		adminEmail  string
		event       contracts.AccessRequestEvent
		wantType    string
		wantTo      string
		wantInBody  string
		wantNoEmail bool
	}{
		{
			name: "approved becomes invite",
			event: contracts.AccessRequestEvent{
				Event: contracts.EventAccessRequestApproved, RequestID: "r-1", Email: "ada@example.com",
				FullName: "Ada", InviteToken: "tok.en+/=", InviteExpiresAt: &expires,
			},
			wantType:   contracts.EmailJobInvite,
			wantTo:     "ada@example.com",
			wantInBody: "https://app.investhub.test/invite?token=tok.en%2B%2F%3D",
		},
		{
			name:       "rejected becomes notice",
			event:      contracts.AccessRequestEvent{Event: contracts.EventAccessRequestRejected, Email: "bob@example.com", FullName: "Bob", Reason: "<script>"},
			wantType:   contracts.EmailJobRejection,
			wantTo:     "bob@example.com",
			wantInBody: "Reason: &lt;script&gt;",
		},
		{
			name:       "submitted alerts admin",
			adminEmail: "admin@investhub.test",
			event:      contracts.AccessRequestEvent{Event: contracts.EventAccessRequestSubmitted, RequestID: "r-9", Email: "eve@example.com", FullName: "Eve"},
			wantType:   contracts.EmailJobAdminAlert,
			wantTo:     "admin@investhub.test",
			wantInBody: "r-9",
		},
		{
			name:        "submitted without admin is ignored",
			event:       contracts.AccessRequestEvent{Event: contracts.EventAccessRequestSubmitted, Email: "eve@example.com"},
			wantNoEmail: true,
		},
		{
			name:        "approved without token is dropped",
			event:       contracts.AccessRequestEvent{Event: contracts.EventAccessRequestApproved, Email: "x@example.com"},
			wantNoEmail: true,
		},
		{
			name:        "unknown event",
			event:       contracts.AccessRequestEvent{Event: "access_request.archived"},
			wantNoEmail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{}
			if err := newBridge(q, tt.adminEmail).Handle(context.Background(), []byte(tt.event.Email), encode(t, tt.event)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNoEmail {
				if len(q.jobs) != 0 {
					t.Fatalf("expected no job, got %+v", q.jobs)
				}
				return
			}
			if len(q.jobs) != 1 {
				t.Fatalf("expected one job, got %d", len(q.jobs))
			}
			job := q.jobs[0]
			if q.queue != "email_jobs" || job.Type != tt.wantType || job.To != tt.wantTo {
				t.Errorf("unexpected job on %q: %+v", q.queue, job)
			}
			if !strings.Contains(job.Body, tt.wantInBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantInBody, job.Body)
			}
		})
	}
}

func TestBridge_Handle_Failures(t *testing.T) {
	t.Run("poison message is committed", func(t *testing.T) {
		q := &fakeQueue{}
		if err := newBridge(q, "").Handle(context.Background(), nil, []byte("{not json")); err != nil {
			t.Fatalf("expected nil so the offset moves on, got %v", err)
		}
	})

	t.Run("publish failure is retried", func(t *testing.T) {
		q := &fakeQueue{err: errors.New("channel closed")}
		event := contracts.AccessRequestEvent{Event: contracts.EventAccessRequestRejected, Email: "bob@example.com"}
		if err := newBridge(q, "").Handle(context.Background(), nil, encode(t, event)); err == nil {
			t.Fatal("expected error so the offset stays uncommitted")
		}
	})
}
