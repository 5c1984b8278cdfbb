package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobKindRebuild is the only job kind: a full index rebuild.
const JobKindRebuild = "rebuild"

// Job represents an asynchronous index job.
type Job struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	Status      JobStatus     `json:"status"`
	Progress    int           `json:"progress"` // 0-100
	Result      *search.Stats `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
	CompletedAt string        `json:"completed_at,omitempty"`

	ctx    context.Context
	cancel context.CancelFunc
}

func (j *Job) active() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusRunning
}

// JobStore keeps jobs in memory.
type JobStore struct {
	jobs map[string]*Job
	mu   sync.RWMutex
	wg   sync.WaitGroup
}

// NewJobStore creates a new job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Create registers a pending job. If a job of the same kind is still pending
// or running, that job is returned instead with created set to false.
func (s *JobStore) Create(kind string) (job Job, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.Kind == kind && j.active() {
			return *j, false
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ts := now()
	j := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    JobStatusPending,
		CreatedAt: ts,
		UpdatedAt: ts,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.jobs[j.ID] = j
	return *j, true
}

// Get returns a copy of the job with the given ID.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Update sets a job's status and progress. A cancelled job stays cancelled.
func (s *JobStore) Update(id string, status JobStatus, progress int, result *search.Stats, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return apperrors.NewNotFound("job", id)
	}
	if j.Status == JobStatusCancelled {
		return nil
	}

	j.Status = status
	j.Progress = progress
	j.UpdatedAt = now()
	if result != nil {
		j.Result = result
	}
	if errMsg != "" {
		j.Error = errMsg
	}
	if !j.active() {
		j.CompletedAt = j.UpdatedAt
		j.cancel()
	}
	return nil
}

// Delete removes a job, cancelling it if it is still active.
func (s *JobStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return apperrors.NewNotFound("job", id)
	}
	j.cancel()
	delete(s.jobs, id)
	return nil
}

// List returns copies of all jobs, oldest first.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *j)
	}
	sort.Slice(jobs, func(a, b int) bool {
		if jobs[a].CreatedAt != jobs[b].CreatedAt {
			return jobs[a].CreatedAt < jobs[b].CreatedAt
		}
		return jobs[a].ID < jobs[b].ID
	})
	return jobs
}

// Cancel cancels a pending or running job.
func (s *JobStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return apperrors.NewNotFound("job", id)
	}
	if !j.active() {
		return apperrors.NewValidation("job", fmt.Sprintf("job cannot be cancelled (status: %s)", j.Status))
	}

	j.cancel()
	j.Status = JobStatusCancelled
	j.UpdatedAt = now()
	j.CompletedAt = j.UpdatedAt
	return nil
}

// CancelAll cancels every active job and waits for their goroutines.
func (s *JobStore) CancelAll() {
	s.mu.Lock()
	for _, j := range s.jobs {
		if j.active() {
			j.cancel()
			j.Status = JobStatusCancelled
			j.UpdatedAt = now()
			j.CompletedAt = j.UpdatedAt
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Run executes fn for the job in a goroutine and records the outcome.
func (s *JobStore) Run(job Job, fn func(ctx context.Context) (*search.Stats, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Update(job.ID, JobStatusRunning, 10, nil, "")

		stats, err := fn(job.ctx)
		switch {
		case errors.Is(err, context.Canceled) || job.ctx.Err() != nil:
			s.Update(job.ID, JobStatusCancelled, 100, nil, "job cancelled")
		case err != nil:
			logging.Error("job failed", "job_id", job.ID, "kind", job.Kind, "error", err)
			s.Update(job.ID, JobStatusFailed, 100, nil, err.Error())
		default:
			s.Update(job.ID, JobStatusCompleted, 100, stats, "")
		}
	}()
}

// handleJobs handles GET /jobs.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	jobs := s.jobs.List()
	respondList(w, http.StatusOK, jobs, len(jobs))
}

// handleJobByID handles GET /jobs/{id} (status) and DELETE /jobs/{id} (cancel).
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Job ID is required")
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "Job ID must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		job, ok := s.jobs.Get(id)
		if !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
			return
		}
		respond(w, http.StatusOK, job)
	case http.MethodDelete:
		if err := s.jobs.Cancel(id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				respondError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
				return
			}
			respondError(w, http.StatusConflict, "CANCEL_FAILED", err.Error())
			return
		}
		job, _ := s.jobs.Get(id)
		respond(w, http.StatusOK, job)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}
