package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
)

var (
	// ErrUnknownLeague is returned when no ingester serves the requested league.
	ErrUnknownLeague = errors.New("unknown league")
	// ErrNoGames is returned for a spec without game IDs.
	ErrNoGames = errors.New("no game IDs provided")
)

// Result is the outcome of one run. Games holds the assembled games in input
// order, failed games omitted.
type Result struct {
	Job   *store.BatchJob
	Games []*store.GameBoxscore
}

// Runner executes batch specs against the registered ingesters.
type Runner struct {
	ingesters map[string]Ingester
	sinks     Sinks
	log       *logrus.Entry
	now       func() time.Time
}

// NewRunner registers one ingester per league.
func NewRunner(logger *logrus.Logger, sinks Sinks, ingesters ...Ingester) *Runner {
	r := &Runner{
		ingesters: make(map[string]Ingester, len(ingesters)),
		sinks:     sinks,
		log:       logging.Component(logger, "batch"),
		now:       time.Now,
	}
	for _, ing := range ingesters {
		r.ingesters[ing.League()] = ing
	}
	return r
}

// Leagues returns the leagues the runner can ingest, sorted.
func (r *Runner) Leagues() []string {
	out := make([]string, 0, len(r.ingesters))
	for league := range r.ingesters {
		out = append(out, league)
	}
	sort.Strings(out)
	return out
}

// Ingest assembles and delivers a single game outside of a batch job.
func (r *Runner) Ingest(ctx context.Context, league, gameID string) (*store.GameBoxscore, error) {
	ing, ok := r.ingesters[strings.ToLower(league)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, league)
	}
	game, err := ing.Ingest(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := r.deliver(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Run ingests every game of the spec. A failing game is recorded on the job
// and the run moves on; only a cancelled context or an unusable spec stops
// it early.
func (r *Runner) Run(ctx context.Context, spec Spec, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	league := strings.ToLower(spec.League)
	ing, ok := r.ingesters[league]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownLeague, spec.League)
		reporter.OnJobError(err)
		return nil, err
	}
	ids := uniqueIDs(spec.GameIDs)
	if len(ids) == 0 {
		reporter.OnJobError(ErrNoGames)
		return nil, ErrNoGames
	}

	jobID := spec.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	job := &store.BatchJob{
		JobID:      jobID,
		League:     league,
		GameIDs:    ids,
		Status:     store.JobRunning,
		GamesTotal: len(ids),
		StartedAt:  r.now().UTC(),
	}
	log := r.log.WithFields(logrus.Fields{"job_id": job.JobID, "league": league, "dry_run": spec.DryRun})
	reporter.OnJobStart(job)

	persist := !spec.DryRun && r.sinks.Jobs != nil
	if persist {
		if err := r.sinks.Jobs.Create(ctx, job); err != nil {
			reporter.OnJobError(err)
			return nil, fmt.Errorf("create batch job: %w", err)
		}
	}

	result := &Result{Job: job}
	total := len(ids)
	for idx, gameID := range ids {
		if err := ctx.Err(); err != nil {
			job.Status = store.JobFailed
			job.ErrorMessage = err.Error()
			r.finish(log, job, persist)
			reporter.OnJobError(err)
			return result, err
		}

		reporter.OnProgress(fmt.Sprintf("Processing game %s (%d/%d)", gameID, idx+1, total), idx, total)

		game, err := r.process(ctx, ing, gameID, spec.DryRun)
		if err != nil {
			job.GamesFailed++
			job.FailedGameIDs = append(job.FailedGameIDs, gameID)
			log.WithError(err).WithField("game_id", gameID).Warn("game failed")
			reporter.OnGameFailed(gameID, err)
		} else {
			job.GamesDone++
			result.Games = append(result.Games, game)
			reporter.OnGameProcessed(gameID, game)
		}

		if persist {
			if err := r.sinks.Jobs.Save(ctx, job); err != nil {
				log.WithError(err).Warn("saving job progress")
			}
		}
	}

	switch {
	case job.GamesFailed == 0:
		job.Status = store.JobCompleted
	case job.GamesDone == 0:
		job.Status = store.JobFailed
		job.ErrorMessage = "every game failed"
	default:
		job.Status = store.JobPartial
	}
	r.finish(log, job, persist)
	reporter.OnJobComplete(job)
	return result, nil
}

func (r *Runner) process(ctx context.Context, ing Ingester, gameID string, dryRun bool) (*store.GameBoxscore, error) {
	game, err := ing.Ingest(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return game, nil
	}
	if err := r.deliver(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// deliver hands the game to each configured sink. Storage and file output
// failures fail the game; cache, stream and broadcast failures are logged.
func (r *Runner) deliver(ctx context.Context, game *store.GameBoxscore) error {
	log := r.log.WithFields(logrus.Fields{"league": game.League, "game_id": game.GameID})

	if r.sinks.Store != nil {
		if err := r.sinks.Store.Upsert(ctx, game); err != nil {
			return fmt.Errorf("store game %s: %w", game.GameID, err)
		}
	}
	if r.sinks.Files != nil {
		path, err := r.sinks.Files.Write(game)
		if err != nil {
			return err
		}
		log.WithField("path", path).Debug("boxscore written")
	}
	if r.sinks.Cache != nil {
		if err := r.sinks.Cache.SetBoxscore(ctx, game); err != nil {
			log.WithError(err).Warn("caching boxscore")
		}
	}
	if r.sinks.Publisher != nil {
		if err := r.sinks.Publisher.PublishBoxscore(ctx, game); err != nil {
			log.WithError(err).Warn("publishing boxscore")
		}
	}
	if r.sinks.Notifier != nil {
		r.sinks.Notifier.BroadcastBoxscore(game)
	}
	return nil
}

func (r *Runner) finish(log *logrus.Entry, job *store.BatchJob, persist bool) {
	completed := r.now().UTC()
	job.CompletedAt = &completed

	if persist {
		// The run context may already be cancelled here.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.sinks.Jobs.Save(ctx, job); err != nil {
			log.WithError(err).Warn("saving final job state")
		}
	}

	log.WithFields(logrus.Fields{
		"status": job.Status,
		"done":   job.GamesDone,
		"failed": job.GamesFailed,
	}).Info("batch finished")
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type nopReporter struct{}

func (nopReporter) OnJobStart(*store.BatchJob) {}
func (nopReporter) OnGameProcessed(string, *store.GameBoxscore) {}
func (nopReporter) OnGameFailed(string, error) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnJobComplete(*store.BatchJob) {}
func (nopReporter) OnJobError(error) {}
