package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/sitecrew/sitecrew/testing"
)

type fakeSender struct {
	to      []string
	subject string
	text    string
	html    string
	err     error
}

func (f *fakeSender) Send(to, subject, text, html string) error {
	f.to = append(f.to, to)
	f.subject = subject
	f.text = text
	f.html = html
	return f.err
}

func newMailJob(sender *fakeSender, registry *prometheus.Registry) *MailJob {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMailJob(sender, logger, NewMetrics(registry))
}

func TestHandleResetMail(t *testing.T) {
	sender := &fakeSender{}
	registry := prometheus.NewRegistry()
	job := newMailJob(sender, registry)

	task, err := NewResetMailTask(ResetMailPayload{To: "a@x.com", Link: "https://sitecrew.local/reset-password?token=abc"})
	require.NoError(t, err)

	require.NoError(t, job.HandleResetMail(context.Background(), task))
	assert.Equal(t, []string{"a@x.com"}, sender.to)
	assert.Equal(t, "Reset your SiteCrew password", sender.subject)
	assert.Contains(t, sender.text, "https://sitecrew.local/reset-password?token=abc")
	assert.Contains(t, sender.html, "https://sitecrew.local/reset-password?token=abc")

	success := job.metrics.runs.WithLabelValues(TaskTypeResetMail, "success")
	assert.Equal(t, float64(1), testutil.ToFloat64(success))
	failures := job.metrics.failures.WithLabelValues(TaskTypeResetMail)
	assert.Equal(t, float64(0), testutil.ToFloat64(failures))
}

func TestHandleResetMailSenderFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	job := newMailJob(sender, prometheus.NewRegistry())

	task, err := NewResetMailTask(ResetMailPayload{To: "a@x.com", Link: "https://sitecrew.local/reset"})
	require.NoError(t, err)

	assert.Error(t, job.HandleResetMail(context.Background(), task))
}

func TestHandleResetMailBadPayloadSkipsRetry(t *testing.T) {
	sender := &fakeSender{}
	job := newMailJob(sender, prometheus.NewRegistry())

	bad := asynq.NewTask(TaskTypeResetMail, []byte(`{"to":`))
	err := job.HandleResetMail(context.Background(), bad)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, sender.to)

	empty := asynq.NewTask(TaskTypeResetMail, []byte(`{}`))
	err = job.HandleResetMail(context.Background(), empty)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, sender.to)
}
