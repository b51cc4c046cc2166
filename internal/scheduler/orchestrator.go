// Package scheduler re-polls games whose source reported them as unfinished
// and ingests each one once it is final.
package scheduler

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
)

// Ingester fetches, assembles and delivers one game.
type Ingester interface {
	Ingest(ctx context.Context, league, gameID string) (*store.GameBoxscore, error)
}

// Config holds scheduler configuration
type Config struct {
	PollInterval time.Duration // Default: 1m
	MaxAttempts  int           // Default: 180
	MaxPending   int           // Default: 100
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Minute,
		MaxAttempts:  180,
		MaxPending:   100,
	}
}

// PendingGame is a game waiting to become final.
type PendingGame struct {
	League   string    `json:"league"`
	GameID   string    `json:"game_id"`
	Attempts int       `json:"attempts"`
	Since    time.Time `json:"since"`
	LastErr  string    `json:"last_error,omitempty"`
}

// Orchestrator keeps a set of pending games and retries them on a ticker.
type Orchestrator struct {
	ingester Ingester
	config   Config
	log      *logrus.Entry

	mu      sync.Mutex
	pending map[string]*PendingGame
	wake    chan struct{}

	ingested int64
	dropped  int64
}

// NewOrchestrator creates a new scheduler orchestrator. Zero config fields
// take their defaults.
func NewOrchestrator(ingester Ingester, config Config, logger *logrus.Logger) *Orchestrator {
	def := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.MaxPending <= 0 {
		config.MaxPending = def.MaxPending
	}
	return &Orchestrator{
		ingester: ingester,
		config:   config,
		log:      logging.Component(logger, "scheduler"),
		pending:  make(map[string]*PendingGame),
		wake:     make(chan struct{}, 1),
	}
}

func pendingKey(league, gameID string) string {
	return strings.ToLower(league) + "/" + gameID
}

// Watch queues a game for polling. It reports false when the queue is full.
// Watching a game that is already queued is a no-op that reports true.
func (o *Orchestrator) Watch(league, gameID string) bool {
	key := pendingKey(league, gameID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.pending[key]; ok {
		return true
	}
	if len(o.pending) >= o.config.MaxPending {
		return false
	}
	o.pending[key] = &PendingGame{League: strings.ToLower(league), GameID: gameID, Since: time.Now()}
	o.log.WithFields(logrus.Fields{"league": league, "game_id": gameID}).Info("watching game until final")
	return true
}

// Start polls until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	o.log.WithFields(logrus.Fields{
		"interval":     o.config.PollInterval,
		"max_attempts": o.config.MaxAttempts,
	}).Info("scheduler started")

	ticker := time.NewTicker(o.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			o.Poll(ctx)
		case <-o.wake:
			o.Poll(ctx)
		}
	}
}

// Trigger runs a poll on the running loop without waiting for the ticker.
func (o *Orchestrator) Trigger() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Poll makes one ingest attempt for every pending game.
func (o *Orchestrator) Poll(ctx context.Context) {
	for _, g := range o.snapshot() {
		if ctx.Err() != nil {
			return
		}
		log := o.log.WithFields(logrus.Fields{"league": g.League, "game_id": g.GameID})

		_, err := o.ingester.Ingest(ctx, g.League, g.GameID)
		switch {
		case err == nil:
			o.remove(g)
			log.Info("✓ game final and ingested")
		case ctx.Err() != nil:
			return
		default:
			if o.recordFailure(g, err) {
				log.WithError(err).Warnf("giving up after %d attempts", o.config.MaxAttempts)
			} else if !errors.Is(err, nba.ErrNotFinal) {
				log.WithError(err).Warn("poll failed")
			}
		}
	}
}

func (o *Orchestrator) snapshot() []PendingGame {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]PendingGame, 0, len(o.pending))
	for _, g := range o.pending {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Since.Before(out[j].Since) })
	return out
}

func (o *Orchestrator) remove(g PendingGame) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, pendingKey(g.League, g.GameID))
	o.ingested++
}

// recordFailure bumps the attempt count and drops the game once it reaches
// MaxAttempts, reporting whether it was dropped.
func (o *Orchestrator) recordFailure(g PendingGame, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := pendingKey(g.League, g.GameID)
	p, ok := o.pending[key]
	if !ok {
		return false
	}
	p.Attempts++
	p.LastErr = err.Error()
	if p.Attempts < o.config.MaxAttempts {
		return false
	}
	delete(o.pending, key)
	o.dropped++
	return true
}

// Pending lists queued games, oldest first.
func (o *Orchestrator) Pending() []PendingGame {
	return o.snapshot()
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	pending := o.snapshot()
	o.mu.Lock()
	defer o.mu.Unlock()
	return map[string]interface{}{
		"poll_interval": o.config.PollInterval.String(),
		"max_attempts":  o.config.MaxAttempts,
		"pending":       pending,
		"ingested":      o.ingested,
		"dropped":       o.dropped,
	}
}
