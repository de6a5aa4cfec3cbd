package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sitecrew/sitecrew/internal/mail"
)

const resetSubject = "Reset your SiteCrew password"

// MailJob processes mail tasks inside the worker.
type MailJob struct {
	sender  mail.Sender
	logger  *slog.Logger
	metrics *Metrics
}

// NewMailJob constructs a MailJob.
func NewMailJob(sender mail.Sender, logger *slog.Logger, metrics *Metrics) *MailJob {
	return &MailJob{sender: sender, logger: logger, metrics: metrics}
}

// HandleResetMail fulfils the asynq.HandlerFunc contract for
// TaskTypeResetMail.
func (j *MailJob) HandleResetMail(ctx context.Context, task *asynq.Task) error {
	tracker := j.metrics.Track(TaskTypeResetMail)

	var payload ResetMailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" || payload.Link == "" {
		return asynq.SkipRetry
	}

	text := fmt.Sprintf("A password reset was requested for your account.\n\nOpen this link to choose a new password:\n%s\n\nThe link is valid for a limited time and works once. If you did not request this, you can ignore this message.", payload.Link)
	html := fmt.Sprintf(`<p>A password reset was requested for your account.</p><p><a href=%q>Choose a new password</a></p><p>The link is valid for a limited time and works once. If you did not request this, you can ignore this message.</p>`, payload.Link)

	if err := j.sender.Send(payload.To, resetSubject, text, html); err != nil {
		j.logger.Error("send reset mail", slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger.Info("reset mail sent", slog.String("to", payload.To))
	return tracker.End(nil)
}
