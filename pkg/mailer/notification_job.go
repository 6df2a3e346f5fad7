package mailer

import (
	"context"
	"errors"
	"fmt"

	mailtpl "github.com/oksasatya/interview-tracker/pkg/mailer/templates"
)

// NotificationJob is the JSON payload put on the RabbitMQ queue when a candidate
// is scheduled or changes status. Template names one of the templates package sets.
type NotificationJob struct {
	Template string                   `json:"template"`
	To       string                   `json:"to"`
	Data     mailtpl.NotificationData `json:"data"`
}

// ErrBadJob marks jobs that can never be delivered; workers drop them instead of requeueing.
var ErrBadJob = errors.New("undeliverable notification job")

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Deliver renders the job's templates and hands the result to s.
func Deliver(ctx context.Context, s Sender, job NotificationJob) error {
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	if !mailtpl.Known(job.Template) {
		return fmt.Errorf("%w: unknown template %q", ErrBadJob, job.Template)
	}
	subject, text, html, err := mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrBadJob, job.Template, err)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
