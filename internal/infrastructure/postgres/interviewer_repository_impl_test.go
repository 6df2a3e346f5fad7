package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/internal/domain/repository"
)

const testInterviewerID = "2f1c7f0e-5b8a-4c36-9d7e-0c1b2a3d4e5f"

var interviewerCols = []string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestTranslatePgError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, repository.ErrDuplicateEmail},
		{"check", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "candidates_score_check"}, repository.ErrConstraint},
		{"bad uuid", &pgconn.PgError{Code: invalidTextReprCode}, repository.ErrNotFound},
		{"missing owner", &pgconn.PgError{Code: foreignKeyViolationCode}, repository.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translatePgError(tt.in), tt.want)
		})
	}

	other := errors.New("boom")
	assert.Equal(t, other, translatePgError(other))
	assert.NoError(t, translatePgError(nil))
}

func TestInterviewerRepository_Create(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interviewers")).
		WithArgs("Ann", "ann@x.io", "digest", entity.DefaultRole).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testInterviewerID, now, now))

	i := &entity.Interviewer{Name: "Ann", Email: "ann@x.io", Password: "digest", Role: entity.DefaultRole}
	require.NoError(t, repo.Create(context.Background(), i))
	assert.Equal(t, testInterviewerID, i.ID)
	assert.Equal(t, now, i.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewerRepository_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO interviewers")).
		WithArgs("Ann", "ann@x.io", "digest", entity.DefaultRole).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	err := repo.Create(context.Background(), &entity.Interviewer{Name: "Ann", Email: "ann@x.io", Password: "digest", Role: entity.DefaultRole})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewerRepository_GetByEmail(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("ANN@x.io").
		WillReturnRows(pgxmock.NewRows(interviewerCols).
			AddRow(testInterviewerID, "Ann", "ann@x.io", "digest", "interviewer", now, now))

	got, err := repo.GetByEmail(context.Background(), "ANN@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "digest", got.Password)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewerRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM interviewers")).
		WithArgs(testInterviewerID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testInterviewerID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewerRepository_GetByID_MalformedIDSkipsQuery(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewerRepository_Update(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE interviewers")).
		WithArgs("Ann B", "ann@x.io", "digest", "interviewer", pgxmock.AnyArg(), testInterviewerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	i := &entity.Interviewer{ID: testInterviewerID, Name: "Ann B", Email: "ann@x.io", Password: "digest", Role: "interviewer"}
	require.NoError(t, repo.Update(context.Background(), i))
	assert.False(t, i.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewerRepository_Update_Missing(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	repo := NewInterviewerRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE interviewers")).
		WithArgs("Ann", "ann@x.io", "digest", "interviewer", pgxmock.AnyArg(), testInterviewerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &entity.Interviewer{ID: testInterviewerID, Name: "Ann", Email: "ann@x.io", Password: "digest", Role: "interviewer"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
