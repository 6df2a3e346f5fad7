package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/internal/domain/repository"
)

const candidateColumns = `c.id, c.interviewer_id, c.full_name, c.email, c.phone, c.position,
		c.interview_date, c.interview_field, c.interview_round, c.status, c.feedback, c.score,
		c.resume_url, c.created_at, c.updated_at`

type CandidateRepository struct {
	db DB
}

func NewCandidateRepository(db DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

func (r *CandidateRepository) Create(ctx context.Context, c *entity.Candidate) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO candidates (interviewer_id, full_name, email, phone, position, interview_date,
			interview_field, interview_round, status, feedback, score, resume_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, c.InterviewerID, c.FullName, c.Email, c.Phone, c.Position, c.InterviewDate,
		c.InterviewField, string(c.InterviewRound), string(c.Status), c.Feedback, c.Score, c.ResumeURL)

	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *CandidateRepository) Update(ctx context.Context, c *entity.Candidate) error {
	if !validID(c.ID) {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(ctx, `
		UPDATE candidates
		SET full_name = $1, email = $2, phone = $3, position = $4, interview_date = $5,
			interview_field = $6, interview_round = $7, status = $8, feedback = $9, score = $10,
			resume_url = $11, updated_at = $12
		WHERE id = $13 AND interviewer_id = $14
	`, c.FullName, c.Email, c.Phone, c.Position, c.InterviewDate,
		c.InterviewField, string(c.InterviewRound), string(c.Status), c.Feedback, c.Score,
		c.ResumeURL, c.UpdatedAt, c.ID, c.InterviewerID)
	if err != nil {
		return translatePgError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CandidateRepository) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1 AND interviewer_id = $2`, id, ownerID)
	if err != nil {
		return translatePgError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CandidateRepository) FindOwned(ctx context.Context, ownerID, id string) (*entity.Candidate, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates c
		WHERE c.id = $1 AND c.interviewer_id = $2
	`, id, ownerID)

	c := &entity.Candidate{}
	if err := row.Scan(candidateDest(c)...); err != nil {
		return nil, translatePgError(err)
	}
	return c, nil
}

func (r *CandidateRepository) FindView(ctx context.Context, ownerID, id string) (*entity.CandidateView, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+candidateColumns+`, i.name, i.email
		FROM candidates c
		JOIN interviewers i ON i.id = c.interviewer_id
		WHERE c.id = $1 AND c.interviewer_id = $2
	`, id, ownerID)
	return scanCandidateView(row)
}

func (r *CandidateRepository) ListViews(ctx context.Context, ownerID *string) ([]entity.CandidateView, error) {
	query := `
		SELECT ` + candidateColumns + `, i.name, i.email
		FROM candidates c
		JOIN interviewers i ON i.id = c.interviewer_id`
	var args []any
	if ownerID != nil {
		query += `
		WHERE c.interviewer_id = $1`
		args = append(args, *ownerID)
	}
	query += `
		ORDER BY c.interview_date ASC, c.created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	out := make([]entity.CandidateView, 0)
	for rows.Next() {
		v, err := scanCandidateView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *CandidateRepository) StatusCounts(ctx context.Context, ownerID *string) ([]entity.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM candidates`
	var args []any
	if ownerID != nil {
		query += ` WHERE interviewer_id = $1`
		args = append(args, *ownerID)
	}
	query += ` GROUP BY status ORDER BY status`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	out := make([]entity.StatusCount, 0, 4)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out = append(out, entity.StatusCount{Status: entity.CandidateStatus(status), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func candidateDest(c *entity.Candidate) []any {
	return []any{
		&c.ID, &c.InterviewerID, &c.FullName, &c.Email, &c.Phone, &c.Position,
		&c.InterviewDate, &c.InterviewField, (*string)(&c.InterviewRound), (*string)(&c.Status),
		&c.Feedback, &c.Score, &c.ResumeURL, &c.CreatedAt, &c.UpdatedAt,
	}
}

func scanCandidateView(row pgx.Row) (*entity.CandidateView, error) {
	v := &entity.CandidateView{}
	dest := append(candidateDest(&v.Candidate), &v.InterviewerName, &v.InterviewerEmail)
	if err := row.Scan(dest...); err != nil {
		return nil, translatePgError(err)
	}
	return v, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var _ repository.CandidateRepository = (*CandidateRepository)(nil)
