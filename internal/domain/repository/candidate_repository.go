package repository

import (
	"context"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
)

// CandidateRepository defines the persistence operations for candidates.
// A nil ownerID means "every owner"; otherwise results are restricted to that interviewer.
type CandidateRepository interface {
	Create(ctx context.Context, c *entity.Candidate) error
	// Update overwrites the stored row matching c.ID and c.InterviewerID.
	Update(ctx context.Context, c *entity.Candidate) error
	Delete(ctx context.Context, ownerID, id string) error
	FindOwned(ctx context.Context, ownerID, id string) (*entity.Candidate, error)
	FindView(ctx context.Context, ownerID, id string) (*entity.CandidateView, error)
	// ListViews returns candidates joined with their owner, ordered by interview date ascending.
	ListViews(ctx context.Context, ownerID *string) ([]entity.CandidateView, error)
	// StatusCounts groups candidates by status; statuses with no candidates are absent.
	StatusCounts(ctx context.Context, ownerID *string) ([]entity.StatusCount, error)
}
