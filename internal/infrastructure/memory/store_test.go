package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/internal/domain/repository"
)

func seedInterviewer(t *testing.T, s *Store, name, email string) *entity.Interviewer {
	t.Helper()
	i := &entity.Interviewer{Name: name, Email: email, Password: "digest", Role: entity.DefaultRole}
	require.NoError(t, s.Interviewers().Create(context.Background(), i))
	return i
}

func newCandidate(owner string, date time.Time, status entity.CandidateStatus) *entity.Candidate {
	return &entity.Candidate{
		InterviewerID:  owner,
		FullName:       "Jane Roe",
		Position:       "Engineer",
		InterviewDate:  date,
		InterviewField: "Go",
		InterviewRound: entity.RoundTechnical,
		Status:         status,
	}
}

func TestInterviewerRepository_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")

	err := s.Interviewers().Create(context.Background(), &entity.Interviewer{Name: "Dup", Email: "ANN@x.io"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	got, err := s.Interviewers().GetByEmail(context.Background(), " Ann@X.io ")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)

	_, err = s.Interviewers().GetByEmail(context.Background(), "nobody@x.io")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInterviewerRepository_UpdateRejectsTakenEmail(t *testing.T) {
	t.Parallel()
	s := NewStore()
	seedInterviewer(t, s, "Ann", "ann@x.io")
	bob := seedInterviewer(t, s, "Bob", "bob@x.io")

	bob.Email = "ann@x.io"
	assert.ErrorIs(t, s.Interviewers().Update(context.Background(), bob), repository.ErrDuplicateEmail)

	bob.Email = "bob@x.io"
	bob.Name = "Robert"
	require.NoError(t, s.Interviewers().Update(context.Background(), bob))
	got, err := s.Interviewers().GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robert", got.Name)
}

func TestCandidateRepository_OwnerScoping(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")
	bob := seedInterviewer(t, s, "Bob", "bob@x.io")
	repo := s.Candidates()

	c := newCandidate(ann.ID, time.Now(), entity.StatusScheduled)
	require.NoError(t, repo.Create(ctx, c))

	_, err := repo.FindOwned(ctx, ann.ID, c.ID)
	require.NoError(t, err)

	_, err = repo.FindOwned(ctx, bob.ID, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, c.ID), repository.ErrNotFound)

	stolen := *c
	stolen.InterviewerID = bob.ID
	assert.ErrorIs(t, repo.Update(ctx, &stolen), repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, ann.ID, c.ID))
	_, err = repo.FindOwned(ctx, ann.ID, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCandidateRepository_CreateRequiresOwnerAndValidValues(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")

	err := s.Candidates().Create(ctx, newCandidate("ghost", time.Now(), entity.StatusScheduled))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	bad := newCandidate(ann.ID, time.Now(), entity.StatusScheduled)
	score := 10.5
	bad.Score = &score
	assert.ErrorIs(t, s.Candidates().Create(ctx, bad), repository.ErrConstraint)
}

func TestCandidateRepository_ListViewsSortedAndEnriched(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")
	bob := seedInterviewer(t, s, "Bob", "bob@x.io")
	repo := s.Candidates()

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	later := newCandidate(ann.ID, base.Add(24*time.Hour), entity.StatusScheduled)
	sooner := newCandidate(ann.ID, base, entity.StatusScheduled)
	other := newCandidate(bob.ID, base.Add(-time.Hour), entity.StatusSelected)
	require.NoError(t, repo.Create(ctx, later))
	require.NoError(t, repo.Create(ctx, sooner))
	require.NoError(t, repo.Create(ctx, other))

	mine, err := repo.ListViews(ctx, &ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, sooner.ID, mine[0].ID)
	assert.Equal(t, later.ID, mine[1].ID)
	assert.Equal(t, "Ann", mine[0].InterviewerName)
	assert.Equal(t, "ann@x.io", mine[0].InterviewerEmail)

	all, err := repo.ListViews(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)
	assert.Equal(t, "Bob", all[0].InterviewerName)
}

func TestCandidateRepository_ListViewsEmptyIsNotNil(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")

	got, err := s.Candidates().ListViews(context.Background(), &ann.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCandidateRepository_StatusCounts(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")
	bob := seedInterviewer(t, s, "Bob", "bob@x.io")
	repo := s.Candidates()

	for _, st := range []entity.CandidateStatus{entity.StatusScheduled, entity.StatusScheduled, entity.StatusSelected} {
		require.NoError(t, repo.Create(ctx, newCandidate(ann.ID, time.Now(), st)))
	}
	require.NoError(t, repo.Create(ctx, newCandidate(bob.ID, time.Now(), entity.StatusRejected)))

	mine, err := repo.StatusCounts(ctx, &ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []entity.StatusCount{
		{Status: entity.StatusScheduled, Count: 2},
		{Status: entity.StatusSelected, Count: 1},
	}, mine)

	global, err := repo.StatusCounts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, global, 3)

	none, err := repo.StatusCounts(ctx, new(string))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_RemoveInterviewerCascades(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()
	ann := seedInterviewer(t, s, "Ann", "ann@x.io")
	require.NoError(t, s.Candidates().Create(ctx, newCandidate(ann.ID, time.Now(), entity.StatusScheduled)))

	s.RemoveInterviewer(ann.ID)

	_, err := s.Interviewers().GetByID(ctx, ann.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	all, err := s.Candidates().ListViews(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
