package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*NotificationData)

func WithPreviousStatus(s string) Option {
	return func(d *NotificationData) { d.PreviousStatus = s }
}

func WithScore(score *float64) Option {
	return func(d *NotificationData) {
		if score == nil {
			return
		}
		v := *score
		d.Score = &v
	}
}

func WithFeedback(feedback string) Option {
	return func(d *NotificationData) { d.Feedback = strings.TrimSpace(feedback) }
}

// Candidate carries the candidate fields the templates print.
type Candidate struct {
	ID             string
	Name           string
	Position       string
	InterviewField string
	InterviewRound string
	InterviewDate  time.Time
	Status         string
}

// NewNotificationData fills the common fields, then applies opts.
func NewNotificationData(appName, interviewerName string, c Candidate, opts ...Option) NotificationData {
	d := NotificationData{
		AppName:         appName,
		InterviewerName: interviewerName,
		CandidateID:     c.ID,
		CandidateName:   c.Name,
		Position:        c.Position,
		InterviewField:  c.InterviewField,
		InterviewRound:  c.InterviewRound,
		InterviewDate:   c.InterviewDate.UTC(),
		Status:          c.Status,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
