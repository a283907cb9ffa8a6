package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/forPelevin/storycut/internal/types"
)

var ErrNotFound = errors.New("job not found")

// Job is the API view of one composition request.
type Job struct {
	ID        string         `json:"id"`
	State     types.JobState `json:"state"`
	Output    string         `json:"output"`
	Shots     int            `json:"shots"`
	Result    *types.Result  `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is a concurrency-safe in-memory job table. Jobs are not persisted.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job), now: time.Now}
}

func (s *Store) Create(id string, m types.Manifest) Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	j := &Job{
		ID:        id,
		State:     types.StatePending,
		Output:    m.Output,
		Shots:     len(m.Shots),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[id] = j
	return *j
}

func (s *Store) SetState(id string, st types.JobState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.State = st
	j.UpdatedAt = s.now()
	return nil
}

func (s *Store) Finish(id string, res types.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.State = res.State
	j.Result = &res
	j.UpdatedAt = s.now()
	return nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return copyJob(j), true
}

// List returns all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, copyJob(j))
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out
}

func copyJob(j *Job) Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		r.Degraded = append([]string(nil), j.Result.Degraded...)
		c.Result = &r
	}
	return c
}
