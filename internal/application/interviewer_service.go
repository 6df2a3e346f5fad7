package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
)

// SessionIssuer signs and checks session tokens.
type SessionIssuer interface {
	Issue(interviewerID string) (string, time.Time, error)
	Validate(token string) (string, error)
}

// Session is a freshly issued token plus the public view of its interviewer.
type Session struct {
	Interviewer *entity.Interviewer
	Token       string
	ExpiresAt   time.Time
}

type InterviewerService struct {
	Credentials *CredentialStore
	Sessions    SessionIssuer
	Logger      logrus.FieldLogger
}

func NewInterviewerService(creds *CredentialStore, sessions SessionIssuer, logger logrus.FieldLogger) *InterviewerService {
	return &InterviewerService{Credentials: creds, Sessions: sessions, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *InterviewerService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, newValidationError(map[string]string{"payload": "name, email and password are required"})
	}
	if err := checkPasswordLength("password", in.Password); err != nil {
		return nil, err
	}
	i, err := s.Credentials.Create(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		if !errors.Is(err, ErrEmailTaken) {
			s.Logger.WithError(err).Error("register interviewer failed")
		}
		return nil, err
	}
	s.Logger.WithField("interviewer_id", i.ID).Info("interviewer registered")
	return s.issue(i)
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong password.
func (s *InterviewerService) Login(ctx context.Context, email, password string) (*Session, error) {
	i, err := s.Credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInterviewerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Credentials.Verify(i, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(i)
}

// Authenticate resolves a session token into its interviewer.
// Any failure, including an interviewer deleted after issue, is ErrUnauthorized.
func (s *InterviewerService) Authenticate(ctx context.Context, token string) (*entity.Interviewer, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	id, err := s.Sessions.Validate(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	i, err := s.Credentials.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrInterviewerNotFound) {
			s.Logger.WithError(err).WithField("interviewer_id", id).Warn("session lookup failed")
		}
		return nil, ErrUnauthorized
	}
	return i.Public(), nil
}

func (s *InterviewerService) Profile(ctx context.Context, id string) (*entity.Interviewer, error) {
	i, err := s.Credentials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return i.Public(), nil
}

// UpdateProfileInput holds optional changes. The password changes only when both
// CurrentPassword and NewPassword are given.
type UpdateProfileInput struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

func (s *InterviewerService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*entity.Interviewer, error) {
	if err := checkPasswordLength("newPassword", in.NewPassword); err != nil {
		return nil, err
	}
	i, err := s.Credentials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			i.Name = name
		}
	}
	if in.Email != nil {
		if email := entity.NormalizeEmail(*in.Email); email != "" && email != i.Email {
			other, err := s.Credentials.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != i.ID:
				return nil, ErrEmailTaken
			case err != nil && !errors.Is(err, ErrInterviewerNotFound):
				return nil, err
			}
			i.Email = email
		}
	}
	if in.CurrentPassword != "" && in.NewPassword != "" {
		if !s.Credentials.Verify(i, in.CurrentPassword) {
			return nil, ErrWrongPassword
		}
		i.SetPassword(in.NewPassword)
	}

	if err := s.Credentials.Save(ctx, i); err != nil {
		return nil, err
	}
	return i.Public(), nil
}

func (s *InterviewerService) issue(i *entity.Interviewer) (*Session, error) {
	token, exp, err := s.Sessions.Issue(i.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("interviewer_id", i.ID).Error("issue session failed")
		return nil, err
	}
	return &Session{Interviewer: i.Public(), Token: token, ExpiresAt: exp}, nil
}
