package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/internal/domain/repository"
)

type InterviewerRepository struct {
	db DB
}

func NewInterviewerRepository(db DB) *InterviewerRepository {
	return &InterviewerRepository{db: db}
}

func (r *InterviewerRepository) Create(ctx context.Context, i *entity.Interviewer) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO interviewers (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, i.Name, i.Email, i.Password, i.Role)

	if err := row.Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *InterviewerRepository) GetByID(ctx context.Context, id string) (*entity.Interviewer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM interviewers
		WHERE id = $1
	`, id)
	return scanInterviewer(row)
}

func (r *InterviewerRepository) GetByEmail(ctx context.Context, email string) (*entity.Interviewer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM interviewers
		WHERE lower(email) = lower($1)
	`, email)
	return scanInterviewer(row)
}

func (r *InterviewerRepository) Update(ctx context.Context, i *entity.Interviewer) error {
	i.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(ctx, `
		UPDATE interviewers
		SET name = $1, email = $2, password_hash = $3, role = $4, updated_at = $5
		WHERE id = $6
	`, i.Name, i.Email, i.Password, i.Role, i.UpdatedAt, i.ID)
	if err != nil {
		return translatePgError(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanInterviewer(row pgx.Row) (*entity.Interviewer, error) {
	i := &entity.Interviewer{}
	if err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Password, &i.Role, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, translatePgError(err)
	}
	return i, nil
}

var _ repository.InterviewerRepository = (*InterviewerRepository)(nil)
