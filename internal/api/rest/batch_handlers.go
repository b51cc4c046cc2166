package rest

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/batch"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
)

// BatchRunner executes batch specs.
type BatchRunner interface {
	Run(ctx context.Context, spec batch.Spec, reporter batch.Reporter) (*batch.Result, error)
}

// JobReader reads persisted batch jobs.
type JobReader interface {
	Get(ctx context.Context, jobID string) (*store.BatchJob, error)
	ListRecent(ctx context.Context, limit int) ([]*store.BatchJob, error)
}

// BatchHandler starts batch runs in the background and reports on them.
type BatchHandler struct {
	runner BatchRunner
	jobs   JobReader

	mu     sync.RWMutex
	active map[string]*store.BatchJob

	historyLimit int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	log *logrus.Entry
}

// NewBatchHandler wires the REST layer to the batch runner. jobs may be nil,
// in which case only runs started by this process are visible.
func NewBatchHandler(runner BatchRunner, jobs JobReader, logger *logrus.Logger) *BatchHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchHandler{
		runner:       runner,
		jobs:         jobs,
		active:       make(map[string]*store.BatchJob),
		historyLimit: 10,
		ctx:          ctx,
		cancel:       cancel,
		log:          logging.Component(logger, "rest.batch"),
	}
}

type apiBatchRequest struct {
	League  string   `json:"league"`
	GameID  string   `json:"game_id"`
	GameIDs []string `json:"game_ids"`
	DryRun  bool     `json:"dry_run"`
}

// HandleBatchRequest handles POST /api/v1/batch
func (h *BatchHandler) HandleBatchRequest(w http.ResponseWriter, r *http.Request) {
	var req apiBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	league := strings.ToLower(strings.TrimSpace(req.League))
	if !validLeague(league) {
		respondError(w, http.StatusBadRequest, "league must be bleague or nba", nil)
		return
	}
	ids := splitList(strings.Join(append(req.GameIDs, req.GameID), ","))
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "game_ids is required", nil)
		return
	}

	spec := batch.Spec{
		JobID:   uuid.NewString(),
		League:  league,
		GameIDs: ids,
		DryRun:  req.DryRun,
	}
	h.track(&store.BatchJob{
		JobID:      spec.JobID,
		League:     league,
		GameIDs:    ids,
		Status:     store.JobRunning,
		GamesTotal: len(ids),
		StartedAt:  time.Now().UTC(),
	})

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if _, err := h.runner.Run(h.ctx, spec, &jobTracker{handler: h, jobID: spec.JobID}); err != nil {
			h.log.WithError(err).WithField("job_id", spec.JobID).Warn("batch run ended with error")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  spec.JobID,
		"league":  league,
		"status":  store.JobRunning,
		"dry_run": req.DryRun,
	})
}

// HandleBatchStatus handles GET /api/v1/batch/{jobID}. Jobs pruned from
// memory are read back from the job store.
func (h *BatchHandler) HandleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	if job := h.snapshot(jobID); job != nil {
		respondJSON(w, http.StatusOK, job)
		return
	}
	if h.jobs == nil {
		respondError(w, http.StatusNotFound, "Job not found", nil)
		return
	}

	job, err := h.jobs.Get(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Job not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch job", err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// HandleBatchHistory handles GET /api/v1/batch
func (h *BatchHandler) HandleBatchHistory(w http.ResponseWriter, r *http.Request) {
	if h.jobs != nil {
		jobs, err := h.jobs.ListRecent(r.Context(), h.historyLimit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch jobs", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
		return
	}

	h.mu.RLock()
	jobs := make([]*store.BatchJob, 0, len(h.active))
	for _, job := range h.active {
		cpy := *job
		jobs = append(jobs, &cpy)
	}
	h.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartedAt.After(jobs[j].StartedAt) })
	if len(jobs) > h.historyLimit {
		jobs = jobs[:h.historyLimit]
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// Shutdown cancels running batches and waits for them to stop.
func (h *BatchHandler) Shutdown(ctx context.Context) error {
	h.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (h *BatchHandler) track(job *store.BatchJob) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active[job.JobID] = job
}

// prune drops finished jobs from memory beyond historyLimit, oldest first.
// Running jobs are always kept.
func (h *BatchHandler) prune() {
	h.mu.Lock()
	defer h.mu.Unlock()

	var finished []*store.BatchJob
	for _, job := range h.active {
		if job.Status != store.JobRunning {
			finished = append(finished, job)
		}
	}
	if len(finished) <= h.historyLimit {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finishedAt(finished[i]).After(finishedAt(finished[j])) })
	for _, job := range finished[h.historyLimit:] {
		delete(h.active, job.JobID)
	}
}

func finishedAt(job *store.BatchJob) time.Time {
	if job.CompletedAt != nil {
		return *job.CompletedAt
	}
	return job.StartedAt
}

func (h *BatchHandler) update(jobID string, fn func(job *store.BatchJob)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if job, ok := h.active[jobID]; ok {
		fn(job)
	}
}

func (h *BatchHandler) snapshot(jobID string) *store.BatchJob {
	h.mu.RLock()
	defer h.mu.RUnlock()
	job, ok := h.active[jobID]
	if !ok {
		return nil
	}
	cpy := *job
	cpy.FailedGameIDs = append([]string(nil), job.FailedGameIDs...)
	return &cpy
}

// jobTracker mirrors runner callbacks into the handler's in-memory view.
// The runner owns its job value, so only copies are stored.
type jobTracker struct {
	handler *BatchHandler
	jobID   string
}

func (t *jobTracker) OnJobStart(job *store.BatchJob) {
	cpy := *job
	t.handler.track(&cpy)
}

func (t *jobTracker) OnGameProcessed(string, *store.GameBoxscore) {
	t.handler.update(t.jobID, func(job *store.BatchJob) { job.GamesDone++ })
}

func (t *jobTracker) OnGameFailed(gameID string, _ error) {
	t.handler.update(t.jobID, func(job *store.BatchJob) {
		job.GamesFailed++
		job.FailedGameIDs = append(job.FailedGameIDs, gameID)
	})
}

func (t *jobTracker) OnProgress(string, int, int) {}

func (t *jobTracker) OnJobComplete(job *store.BatchJob) {
	cpy := *job
	cpy.FailedGameIDs = append([]string(nil), job.FailedGameIDs...)
	t.handler.track(&cpy)
	t.handler.prune()
}

func (t *jobTracker) OnJobError(err error) {
	t.handler.update(t.jobID, func(job *store.BatchJob) {
		now := time.Now().UTC()
		job.Status = store.JobFailed
		job.ErrorMessage = err.Error()
		job.CompletedAt = &now
	})
	t.handler.prune()
}
