// shared/contracts/email_job.go
package contracts

// Email job types placed on the email queue.
const (
	EmailJobInvite     = "invite_email"
	EmailJobRejection  = "rejection_email"
	EmailJobAdminAlert = "admin_alert"
)

// EmailJob is a task (not a fact): "send this message". Produced by the bridge,
// consumed by the email worker.
type EmailJob struct {
	Type    string `json:"type"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"` // HTML
}
