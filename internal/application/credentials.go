package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	repo "github.com/oksasatya/interview-tracker/internal/domain/repository"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
)

// CredentialStore persists interviewers and owns password hashing.
// A staged password is hashed exactly once, on the save that follows SetPassword.
type CredentialStore struct {
	Repo   repo.InterviewerRepository
	Hasher helpers.PasswordHasher
}

func NewCredentialStore(r repo.InterviewerRepository, hasher helpers.PasswordHasher) *CredentialStore {
	return &CredentialStore{Repo: r, Hasher: hasher}
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.Interviewer, error) {
	i, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		return nil, mapInterviewerErr(err)
	}
	return i, nil
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*entity.Interviewer, error) {
	i, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapInterviewerErr(err)
	}
	return i, nil
}

// Create registers a new interviewer with the default role.
func (s *CredentialStore) Create(ctx context.Context, name, email, plain string) (*entity.Interviewer, error) {
	email = entity.NormalizeEmail(email)
	if _, err := s.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrInterviewerNotFound) {
		return nil, err
	}

	i := &entity.Interviewer{
		Name:  strings.TrimSpace(name),
		Email: email,
		Role:  entity.DefaultRole,
	}
	i.SetPassword(plain)
	if err := s.hashPending(i); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, i); err != nil {
		return nil, mapInterviewerErr(err)
	}
	return i, nil
}

// Save persists i, hashing a staged password first if there is one.
func (s *CredentialStore) Save(ctx context.Context, i *entity.Interviewer) error {
	if err := s.hashPending(i); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, i); err != nil {
		return mapInterviewerErr(err)
	}
	return nil
}

// Verify checks plain against the stored digest.
func (s *CredentialStore) Verify(i *entity.Interviewer, plain string) bool {
	if i == nil || i.Password == "" {
		return false
	}
	return s.Hasher.Verify(plain, i.Password)
}

func (s *CredentialStore) hashPending(i *entity.Interviewer) error {
	if !i.PasswordChanged() {
		return nil
	}
	digest, err := s.Hasher.Hash(i.PendingPassword())
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return fieldError("password", passwordTooLong)
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	i.MarkPasswordHashed(digest)
	return nil
}

var passwordTooLong = fmt.Sprintf("must be at most %d bytes long", helpers.MaxPasswordBytes)

// checkPasswordLength reports an over-long password under field before any lookup or hashing.
func checkPasswordLength(field, plain string) error {
	if len(plain) > helpers.MaxPasswordBytes {
		return fieldError(field, passwordTooLong)
	}
	return nil
}

func mapInterviewerErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrInterviewerNotFound
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return err
	}
}
