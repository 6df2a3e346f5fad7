package entity

import (
	"strings"
	"time"
)

// InterviewRound is the stage a candidate is interviewed in.
type InterviewRound string

const (
	RoundHR         InterviewRound = "HR"
	RoundTechnical  InterviewRound = "Technical"
	RoundManagerial InterviewRound = "Managerial"
)

// IsValid reports whether r is one of the known rounds.
func (r InterviewRound) IsValid() bool {
	switch r {
	case RoundHR, RoundTechnical, RoundManagerial:
		return true
	default:
		return false
	}
}

// CandidateStatus tracks where a candidate is in the pipeline.
type CandidateStatus string

const (
	StatusScheduled CandidateStatus = "scheduled"
	StatusCompleted CandidateStatus = "completed"
	StatusSelected  CandidateStatus = "selected"
	StatusRejected  CandidateStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s CandidateStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusSelected, StatusRejected:
		return true
	default:
		return false
	}
}

const (
	MinScore = 0
	MaxScore = 10
)

// Candidate is owned by exactly one interviewer; InterviewerID never changes after creation.
type Candidate struct {
	ID             string          `json:"id"`
	InterviewerID  string          `json:"interviewer"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Position       string          `json:"position"`
	InterviewDate  time.Time       `json:"interviewDate"`
	InterviewField string          `json:"interviewField"`
	InterviewRound InterviewRound  `json:"interviewRound"`
	Status         CandidateStatus `json:"status"`
	Feedback       string          `json:"feedback,omitempty"`
	Score          *float64        `json:"score,omitempty"`
	ResumeURL      string          `json:"resumeUrl,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Normalize applies the storage conventions: trimmed names, lowercased email, default status.
func (c *Candidate) Normalize() {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = NormalizeEmail(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Position = strings.TrimSpace(c.Position)
	c.InterviewField = strings.TrimSpace(c.InterviewField)
	if c.Status == "" {
		c.Status = StatusScheduled
	}
}

// Validate returns a field -> problem map, or nil when the record can be stored.
func (c *Candidate) Validate() map[string]string {
	problems := map[string]string{}
	if c.InterviewerID == "" {
		problems["interviewer"] = "is required"
	}
	if c.FullName == "" {
		problems["fullName"] = "is required"
	}
	if c.Position == "" {
		problems["position"] = "is required"
	}
	if c.InterviewDate.IsZero() {
		problems["interviewDate"] = "is required"
	}
	if c.InterviewField == "" {
		problems["interviewField"] = "is required"
	}
	if c.InterviewRound == "" {
		problems["interviewRound"] = "is required"
	} else if !c.InterviewRound.IsValid() {
		problems["interviewRound"] = "must be one of: HR, Technical, Managerial"
	}
	if !c.Status.IsValid() {
		problems["status"] = "must be one of: scheduled, completed, selected, rejected"
	}
	if c.Score != nil && (*c.Score < MinScore || *c.Score > MaxScore) {
		problems["score"] = "must be between 0 and 10"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// CandidateView is a candidate joined with its owner's name and email.
type CandidateView struct {
	Candidate
	InterviewerName  string `json:"interviewerName"`
	InterviewerEmail string `json:"interviewerEmail"`
}

// StatusCount is one group of the status tally. The "_id" key matches the
// grouped output existing clients already parse.
type StatusCount struct {
	Status CandidateStatus `json:"_id"`
	Count  int64           `json:"count"`
}
