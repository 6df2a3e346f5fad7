package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	repo "github.com/oksasatya/interview-tracker/internal/domain/repository"
	"github.com/oksasatya/interview-tracker/pkg/mailer"
	mailtpl "github.com/oksasatya/interview-tracker/pkg/mailer/templates"
)

const (
	sideEffectTimeout = 3 * time.Second

	MaxResumeBytes    = 5 << 20
	defaultSearchSize = 10
	maxSearchSize     = 50
)

var resumeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// CandidateService holds the candidate use cases. Index, Events and Storage are optional.
type CandidateService struct {
	Repo        repo.CandidateRepository
	Index       CandidateIndex
	Events      EventPublisher
	Storage     ObjectStorage
	Logger      logrus.FieldLogger
	AppName     string
	ListAllRole string
}

func NewCandidateService(r repo.CandidateRepository, logger logrus.FieldLogger) *CandidateService {
	return &CandidateService{Repo: r, Logger: logger}
}

// CandidateInput is a create request; dates are RFC3339 or YYYY-MM-DD.
type CandidateInput struct {
	FullName       string
	Email          string
	Phone          string
	Position       string
	InterviewDate  string
	InterviewField string
	InterviewRound string
	Status         string
	Feedback       string
	Score          *float64
}

// CandidatePatch is a partial update; nil fields are left as stored.
type CandidatePatch struct {
	FullName       *string
	Email          *string
	Phone          *string
	Position       *string
	InterviewDate  *string
	InterviewField *string
	InterviewRound *string
	Status         *string
	Feedback       *string
	Score          *float64
}

func (s *CandidateService) Create(ctx context.Context, ownerID string, in CandidateInput) (*entity.CandidateView, []entity.StatusCount, error) {
	c := &entity.Candidate{
		InterviewerID:  ownerID,
		FullName:       in.FullName,
		Email:          in.Email,
		Phone:          in.Phone,
		Position:       in.Position,
		InterviewField: in.InterviewField,
		InterviewRound: entity.InterviewRound(strings.TrimSpace(in.InterviewRound)),
		Status:         entity.CandidateStatus(strings.TrimSpace(in.Status)),
		Feedback:       strings.TrimSpace(in.Feedback),
		Score:          in.Score,
	}
	problems := map[string]string{}
	if strings.TrimSpace(in.InterviewDate) != "" {
		d, err := parseInterviewDate(in.InterviewDate)
		if err != nil {
			problems["interviewDate"] = "must be a date (YYYY-MM-DD or RFC3339)"
		}
		c.InterviewDate = d
	}
	c.Normalize()
	for k, v := range c.Validate() {
		if _, seen := problems[k]; !seen {
			problems[k] = v
		}
	}
	if len(problems) > 0 {
		return nil, nil, newValidationError(problems)
	}

	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, nil, s.mapStoreErr(err, "create candidate")
	}
	view, err := s.Repo.FindView(ctx, ownerID, c.ID)
	if err != nil {
		return nil, nil, s.mapStoreErr(err, "load candidate")
	}
	stats, err := s.Stats(ctx, &ownerID)
	if err != nil {
		return nil, nil, err
	}

	s.indexCandidate(ctx, view)
	s.notify(ctx, mailtpl.InterviewScheduled, view)
	s.Logger.WithFields(logrus.Fields{"candidate_id": c.ID, "interviewer_id": ownerID}).Info("candidate created")
	return view, stats, nil
}

func (s *CandidateService) ListMine(ctx context.Context, ownerID string) ([]entity.CandidateView, []entity.StatusCount, error) {
	return s.list(ctx, &ownerID)
}

// ListAll returns every interviewer's candidates with global stats.
// When ListAllRole is set only that role may call it.
func (s *CandidateService) ListAll(ctx context.Context, role string) ([]entity.CandidateView, []entity.StatusCount, error) {
	if s.ListAllRole != "" && role != s.ListAllRole {
		return nil, nil, ErrForbidden
	}
	return s.list(ctx, nil)
}

func (s *CandidateService) list(ctx context.Context, ownerID *string) ([]entity.CandidateView, []entity.StatusCount, error) {
	views, err := s.Repo.ListViews(ctx, ownerID)
	if err != nil {
		return nil, nil, s.mapStoreErr(err, "list candidates")
	}
	stats, err := s.Stats(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return views, stats, nil
}

func (s *CandidateService) GetOne(ctx context.Context, ownerID, id string) (*entity.CandidateView, error) {
	view, err := s.Repo.FindView(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapStoreErr(err, "get candidate")
	}
	return view, nil
}

func (s *CandidateService) Update(ctx context.Context, ownerID, id string, p CandidatePatch) (*entity.CandidateView, []entity.StatusCount, error) {
	c, err := s.Repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, nil, s.mapStoreErr(err, "load candidate")
	}
	prevStatus := c.Status

	problems := map[string]string{}
	applyString(&c.FullName, p.FullName)
	applyString(&c.Email, p.Email)
	applyString(&c.Phone, p.Phone)
	applyString(&c.Position, p.Position)
	applyString(&c.InterviewField, p.InterviewField)
	applyString(&c.Feedback, p.Feedback)
	if p.InterviewRound != nil {
		c.InterviewRound = entity.InterviewRound(strings.TrimSpace(*p.InterviewRound))
	}
	if p.Status != nil {
		c.Status = entity.CandidateStatus(strings.TrimSpace(*p.Status))
		if c.Status == "" {
			problems["status"] = "must be one of: scheduled, completed, selected, rejected"
		}
	}
	if p.Score != nil {
		v := *p.Score
		c.Score = &v
	}
	if p.InterviewDate != nil {
		d, err := parseInterviewDate(*p.InterviewDate)
		if err != nil {
			problems["interviewDate"] = "must be a date (YYYY-MM-DD or RFC3339)"
		} else {
			c.InterviewDate = d
		}
	}
	c.Normalize()
	for k, v := range c.Validate() {
		if _, seen := problems[k]; !seen {
			problems[k] = v
		}
	}
	if len(problems) > 0 {
		return nil, nil, newValidationError(problems)
	}

	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, nil, s.mapStoreErr(err, "update candidate")
	}
	view, err := s.Repo.FindView(ctx, ownerID, id)
	if err != nil {
		return nil, nil, s.mapStoreErr(err, "load candidate")
	}
	stats, err := s.Stats(ctx, &ownerID)
	if err != nil {
		return nil, nil, err
	}

	s.indexCandidate(ctx, view)
	if view.Status != prevStatus {
		s.notify(ctx, mailtpl.StatusChanged, view, mailtpl.WithPreviousStatus(string(prevStatus)))
	}
	return view, stats, nil
}

func (s *CandidateService) Delete(ctx context.Context, ownerID, id string) ([]entity.StatusCount, error) {
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		return nil, s.mapStoreErr(err, "delete candidate")
	}
	if s.Index != nil {
		s.bestEffort(ctx, "search index delete failed", logrus.Fields{"candidate_id": id}, func(ctx context.Context) error {
			return s.Index.Delete(ctx, id)
		})
	}
	s.Logger.WithFields(logrus.Fields{"candidate_id": id, "interviewer_id": ownerID}).Info("candidate deleted")
	return s.Stats(ctx, &ownerID)
}

// Stats counts candidates per status. A nil ownerID counts across all interviewers.
func (s *CandidateService) Stats(ctx context.Context, ownerID *string) ([]entity.StatusCount, error) {
	stats, err := s.Repo.StatusCounts(ctx, ownerID)
	if err != nil {
		return nil, s.mapStoreErr(err, "count candidates")
	}
	if stats == nil {
		stats = []entity.StatusCount{}
	}
	return stats, nil
}

// Search matches the owner's candidates by name, position, email or field.
// Without an index, or when the index fails, it scans the owner's list instead.
func (s *CandidateService) Search(ctx context.Context, ownerID, q string, size int) ([]entity.CandidateView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fieldError("q", "is required")
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	if s.Index != nil {
		sctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		hits, err := s.Index.Search(sctx, ownerID, q, size)
		cancel()
		if err == nil {
			return hits, nil
		}
		s.Logger.WithError(err).WithField("interviewer_id", ownerID).Warn("search index query failed; scanning store")
	}

	views, err := s.Repo.ListViews(ctx, &ownerID)
	if err != nil {
		return nil, s.mapStoreErr(err, "search candidates")
	}
	needle := strings.ToLower(q)
	out := make([]entity.CandidateView, 0)
	for _, v := range views {
		if matchesCandidate(v, needle) {
			out = append(out, v)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

func matchesCandidate(v entity.CandidateView, needle string) bool {
	for _, field := range []string{v.FullName, v.Position, v.Email, v.InterviewField} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ResumeUpload describes one uploaded resume file.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *CandidateService) UploadResume(ctx context.Context, ownerID, id string, f ResumeUpload) (*entity.CandidateView, error) {
	if s.Storage == nil {
		return nil, ErrStorageUnavailable
	}
	c, err := s.Repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapStoreErr(err, "load candidate")
	}

	ext := strings.ToLower(filepath.Ext(f.Filename))
	contentType, ok := resumeTypes[ext]
	if !ok {
		return nil, fieldError("resume", "must be a PDF, DOC or DOCX file")
	}
	if f.Size <= 0 {
		return nil, fieldError("resume", "is empty")
	}
	if f.Size > MaxResumeBytes {
		return nil, fieldError("resume", "must be at most 5 MiB")
	}

	objectPath := path.Join("resumes", ownerID, c.ID, uuid.NewString()+ext)
	url, err := s.Storage.Upload(ctx, objectPath, contentType, io.LimitReader(f.Body, MaxResumeBytes))
	if err != nil {
		s.Logger.WithError(err).WithField("candidate_id", c.ID).Error("resume upload failed")
		return nil, fmt.Errorf("upload resume: %w", err)
	}

	c.ResumeURL = url
	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, s.mapStoreErr(err, "update candidate")
	}
	view, err := s.Repo.FindView(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapStoreErr(err, "load candidate")
	}
	s.indexCandidate(ctx, view)
	return view, nil
}

func (s *CandidateService) indexCandidate(ctx context.Context, view *entity.CandidateView) {
	if s.Index == nil {
		return
	}
	s.bestEffort(ctx, "search index update failed", logrus.Fields{"candidate_id": view.ID}, func(ctx context.Context) error {
		return s.Index.Index(ctx, view)
	})
}

func (s *CandidateService) notify(ctx context.Context, template string, view *entity.CandidateView, opts ...mailtpl.Option) {
	if s.Events == nil || view.InterviewerEmail == "" {
		return
	}
	opts = append(opts, mailtpl.WithScore(view.Score), mailtpl.WithFeedback(view.Feedback))
	job := mailer.NotificationJob{
		Template: template,
		To:       view.InterviewerEmail,
		Data: mailtpl.NewNotificationData(s.AppName, view.InterviewerName, mailtpl.Candidate{
			ID:             view.ID,
			Name:           view.FullName,
			Position:       view.Position,
			InterviewField: view.InterviewField,
			InterviewRound: string(view.InterviewRound),
			InterviewDate:  view.InterviewDate,
			Status:         string(view.Status),
		}, opts...),
	}
	s.bestEffort(ctx, "notification publish failed", logrus.Fields{"candidate_id": view.ID, "template": template}, func(ctx context.Context) error {
		return s.Events.PublishJSON(ctx, job)
	})
}

// bestEffort runs fn under a short deadline; failures are logged and never returned.
func (s *CandidateService) bestEffort(ctx context.Context, msg string, fields logrus.Fields, fn func(context.Context) error) {
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := fn(c); err != nil {
		s.Logger.WithError(err).WithFields(fields).Warn(msg)
	}
}

func (s *CandidateService) mapStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrCandidateNotFound
	case errors.Is(err, repo.ErrConstraint):
		return fieldError("payload", "contains a value outside the allowed range")
	default:
		s.Logger.WithError(err).WithField("op", op).Error("candidate store failed")
		return fmt.Errorf("%s: %w", op, err)
	}
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func parseInterviewDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}
