package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches, including rows owned by someone else.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an interviewer email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrConstraint is returned when the store rejects a value (enum, score range).
	ErrConstraint = errors.New("value rejected by store")
)

// InterviewerRepository defines the persistence operations for interviewers.
// Emails are matched case-insensitively.
type InterviewerRepository interface {
	Create(ctx context.Context, i *entity.Interviewer) error
	GetByID(ctx context.Context, id string) (*entity.Interviewer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Interviewer, error)
	Update(ctx context.Context, i *entity.Interviewer) error
}
