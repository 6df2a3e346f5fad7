package application

import (
	"context"
	"io"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
)

// CandidateIndex is the full-text index kept beside the candidate store.
type CandidateIndex interface {
	Index(ctx context.Context, c *entity.CandidateView) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, ownerID, q string, size int) ([]entity.CandidateView, error)
}

// EventPublisher puts a JSON job on the notification queue.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ObjectStorage stores uploaded files and returns where they can be fetched.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
