// Package memory keeps interviewers and candidates in process memory.
// It backs STORAGE=memory and the HTTP/application tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/interview-tracker/internal/domain/entity"
	"github.com/oksasatya/interview-tracker/internal/domain/repository"
)

type storedCandidate struct {
	entity.Candidate
	seq uint64
}

// Store is shared by both repositories so candidate lists can join owner details.
type Store struct {
	mu           sync.RWMutex
	interviewers map[string]entity.Interviewer
	candidates   map[string]storedCandidate
	seq          uint64
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		interviewers: make(map[string]entity.Interviewer),
		candidates:   make(map[string]storedCandidate),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Interviewers() *InterviewerRepository { return &InterviewerRepository{s: s} }

func (s *Store) Candidates() *CandidateRepository { return &CandidateRepository{s: s} }

// RemoveInterviewer drops an interviewer and cascades to their candidates.
func (s *Store) RemoveInterviewer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.interviewers, id)
	for cid, c := range s.candidates {
		if c.InterviewerID == id {
			delete(s.candidates, cid)
		}
	}
}

type InterviewerRepository struct {
	s *Store
}

func (r *InterviewerRepository) Create(_ context.Context, i *entity.Interviewer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTakenLocked(i.Email, "") {
		return repository.ErrDuplicateEmail
	}
	now := r.s.now()
	i.ID = uuid.NewString()
	i.CreatedAt, i.UpdatedAt = now, now
	r.s.interviewers[i.ID] = copyInterviewer(i)
	return nil
}

func (r *InterviewerRepository) GetByID(_ context.Context, id string) (*entity.Interviewer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.interviewers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &i, nil
}

func (r *InterviewerRepository) GetByEmail(_ context.Context, email string) (*entity.Interviewer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := entity.NormalizeEmail(email)
	for _, i := range r.s.interviewers {
		if entity.NormalizeEmail(i.Email) == want {
			found := i
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InterviewerRepository) Update(_ context.Context, i *entity.Interviewer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.interviewers[i.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.s.emailTakenLocked(i.Email, i.ID) {
		return repository.ErrDuplicateEmail
	}
	i.UpdatedAt = r.s.now()
	r.s.interviewers[i.ID] = copyInterviewer(i)
	return nil
}

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	want := entity.NormalizeEmail(email)
	for id, i := range s.interviewers {
		if id != exceptID && entity.NormalizeEmail(i.Email) == want {
			return true
		}
	}
	return false
}

// copyInterviewer keeps only persisted fields; staged passwords never reach the map.
func copyInterviewer(i *entity.Interviewer) entity.Interviewer {
	return entity.Interviewer{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Password:  i.Password,
		Role:      i.Role,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

type CandidateRepository struct {
	s *Store
}

func (r *CandidateRepository) Create(_ context.Context, c *entity.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.interviewers[c.InterviewerID]; !ok {
		return repository.ErrNotFound
	}
	if !storable(c) {
		return repository.ErrConstraint
	}
	now := r.s.now()
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.seq++
	r.s.candidates[c.ID] = storedCandidate{Candidate: copyCandidate(c), seq: r.s.seq}
	return nil
}

func (r *CandidateRepository) Update(_ context.Context, c *entity.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.candidates[c.ID]
	if !ok || cur.InterviewerID != c.InterviewerID {
		return repository.ErrNotFound
	}
	if !storable(c) {
		return repository.ErrConstraint
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = r.s.now()
	r.s.candidates[c.ID] = storedCandidate{Candidate: copyCandidate(c), seq: cur.seq}
	return nil
}

func (r *CandidateRepository) Delete(_ context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.candidates[id]
	if !ok || cur.InterviewerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.s.candidates, id)
	return nil
}

func (r *CandidateRepository) FindOwned(_ context.Context, ownerID, id string) (*entity.Candidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cur, ok := r.s.candidates[id]
	if !ok || cur.InterviewerID != ownerID {
		return nil, repository.ErrNotFound
	}
	c := copyCandidate(&cur.Candidate)
	return &c, nil
}

func (r *CandidateRepository) FindView(_ context.Context, ownerID, id string) (*entity.CandidateView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cur, ok := r.s.candidates[id]
	if !ok || cur.InterviewerID != ownerID {
		return nil, repository.ErrNotFound
	}
	v, ok := r.s.viewLocked(cur)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *CandidateRepository) ListViews(_ context.Context, ownerID *string) ([]entity.CandidateView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]storedCandidate, 0, len(r.s.candidates))
	for _, c := range r.s.candidates {
		if ownerID == nil || c.InterviewerID == *ownerID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(a, b int) bool {
		x, y := matched[a], matched[b]
		if !x.InterviewDate.Equal(y.InterviewDate) {
			return x.InterviewDate.Before(y.InterviewDate)
		}
		return x.seq < y.seq
	})

	out := make([]entity.CandidateView, 0, len(matched))
	for _, c := range matched {
		if v, ok := r.s.viewLocked(c); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// StatusCounts folds over the matching candidates; statuses never seen are omitted.
func (r *CandidateRepository) StatusCounts(_ context.Context, ownerID *string) ([]entity.StatusCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tally := make(map[entity.CandidateStatus]int64)
	for _, c := range r.s.candidates {
		if ownerID == nil || c.InterviewerID == *ownerID {
			tally[c.Status]++
		}
	}

	out := make([]entity.StatusCount, 0, len(tally))
	for status, n := range tally {
		out = append(out, entity.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Status < out[b].Status })
	return out, nil
}

func (s *Store) viewLocked(c storedCandidate) (entity.CandidateView, bool) {
	owner, ok := s.interviewers[c.InterviewerID]
	if !ok {
		return entity.CandidateView{}, false
	}
	return entity.CandidateView{
		Candidate:        copyCandidate(&c.Candidate),
		InterviewerName:  owner.Name,
		InterviewerEmail: owner.Email,
	}, true
}

// storable mirrors the table CHECK constraints.
func storable(c *entity.Candidate) bool {
	if !c.InterviewRound.IsValid() || !c.Status.IsValid() {
		return false
	}
	if c.Score != nil && (*c.Score < entity.MinScore || *c.Score > entity.MaxScore) {
		return false
	}
	return true
}

func copyCandidate(c *entity.Candidate) entity.Candidate {
	out := *c
	if c.Score != nil {
		v := *c.Score
		out.Score = &v
	}
	return out
}

var (
	_ repository.InterviewerRepository = (*InterviewerRepository)(nil)
	_ repository.CandidateRepository   = (*CandidateRepository)(nil)
)
