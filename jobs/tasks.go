// Package jobs declares background task types and the worker that
// processes them. Mail dispatch runs here so the HTTP response never
// waits on SMTP.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeResetMail is the task type for password-reset mail.
	TaskTypeResetMail = "mail:send_reset"
)

// ResetMailPayload carries everything needed to send a reset mail. Link
// embeds the raw secret; it must never be logged.
type ResetMailPayload struct {
	To   string `json:"to"`
	Link string `json:"link"`
}

// NewResetMailTask constructs an Asynq task for a reset mail.
func NewResetMailTask(payload ResetMailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeResetMail, data, asynq.Queue(QueueDefault)), nil
}

// Enqueuer submits background tasks through the asynq client.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueResetMail queues a password-reset mail for dispatch.
func (e *Enqueuer) EnqueueResetMail(ctx context.Context, to, link string) error {
	task, err := NewResetMailTask(ResetMailPayload{To: to, Link: link})
	if err != nil {
		return fmt.Errorf("jobs: build reset mail task: %w", err)
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("jobs: enqueue reset mail: %w", err)
	}
	return nil
}
