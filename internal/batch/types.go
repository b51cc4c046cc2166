package batch

import (
	"context"

	"github.com/fortuna/courtside/internal/store"
)

// Spec describes one batch run. An empty JobID gets a generated one.
type Spec struct {
	JobID   string
	League  string
	GameIDs []string
	DryRun  bool
}

// Ingester turns one game ID into an assembled boxscore.
type Ingester interface {
	League() string
	Ingest(ctx context.Context, gameID string) (*store.GameBoxscore, error)
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(job *store.BatchJob)
	OnGameProcessed(gameID string, game *store.GameBoxscore)
	OnGameFailed(gameID string, err error)
	OnProgress(message string, current int, total int)
	OnJobComplete(job *store.BatchJob)
	OnJobError(err error)
}

// BoxscoreStore persists assembled games.
type BoxscoreStore interface {
	Upsert(ctx context.Context, game *store.GameBoxscore) error
}

// BoxscoreCache keeps recently assembled games hot.
type BoxscoreCache interface {
	SetBoxscore(ctx context.Context, game *store.GameBoxscore) error
}

// Publisher announces assembled games to downstream consumers.
type Publisher interface {
	PublishBoxscore(ctx context.Context, game *store.GameBoxscore) error
}

// Notifier pushes assembled games to connected clients.
type Notifier interface {
	BroadcastBoxscore(game *store.GameBoxscore)
}

// JobStore records batch progress.
type JobStore interface {
	Create(ctx context.Context, job *store.BatchJob) error
	Save(ctx context.Context, job *store.BatchJob) error
}

// Sinks are the optional destinations of each assembled game. Nil fields are
// skipped.
type Sinks struct {
	Store     BoxscoreStore
	Cache     BoxscoreCache
	Publisher Publisher
	Notifier  Notifier
	Files     *FileSink
	Jobs      JobStore
}
