package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/batch"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/rank"
	"github.com/fortuna/courtside/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BoxscoreReader reads stored games.
type BoxscoreReader interface {
	Get(ctx context.Context, league, gameID string) (*store.BoxscoreRecord, error)
	ListByIDs(ctx context.Context, league string, gameIDs []string) ([]*store.BoxscoreRecord, error)
	ListByDate(ctx context.Context, league, date string) ([]*store.BoxscoreRecord, error)
}

// BoxscoreCache serves recently assembled games.
type BoxscoreCache interface {
	GetBoxscore(ctx context.Context, league, gameID string) (*store.GameBoxscore, error)
}

// GameIngester fetches and assembles one game on demand.
type GameIngester interface {
	Ingest(ctx context.Context, league, gameID string) (*store.GameBoxscore, error)
}

// GameWatcher re-polls games that are not final yet.
type GameWatcher interface {
	Watch(league, gameID string) bool
}

// HealthChecker is a dependency probed by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the handler's collaborators. Nil fields disable the routes that
// need them.
type Deps struct {
	Boxscores BoxscoreReader
	Cache     BoxscoreCache
	Ingester  GameIngester
	Watcher   GameWatcher
	Checks    map[string]HealthChecker
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	deps Deps
	log  *logrus.Entry
}

// NewHandler creates a new handler
func NewHandler(deps Deps, logger *logrus.Logger) *Handler {
	return &Handler{deps: deps, log: logging.Component(logger, "rest")}
}

// HealthCheck reports the state of every registered dependency.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.deps.Checks))
	for name, check := range h.deps.Checks {
		if err := check.HealthCheck(ctx); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":     state,
		"service":    "courtside",
		"components": components,
	})
}

type boxscorePayload struct {
	Source      string              `json:"source"`
	Score       map[string]int      `json:"score"`
	ScoreColors map[string]string   `json:"score_colors"`
	Winner      string              `json:"winner,omitempty"`
	Boxscore    *store.GameBoxscore `json:"boxscore"`
}

func newBoxscorePayload(source string, game *store.GameBoxscore) boxscorePayload {
	home, away := game.Score()
	homeColor, awayColor := game.ScoreColors()
	p := boxscorePayload{
		Source:      source,
		Score:       map[string]int{"home": home, "away": away},
		ScoreColors: map[string]string{"home": homeColor, "away": awayColor},
		Boxscore:    game,
	}
	if w := game.Winner(); w != nil {
		p.Winner = w.Identity.Key
	}
	return p
}

// GetBoxscore handles GET /api/v1/games/{league}/{gameID}/boxscore. The cache
// is consulted before the database.
func (h *Handler) GetBoxscore(w http.ResponseWriter, r *http.Request) {
	league, gameID, ok := gameVars(w, r)
	if !ok {
		return
	}
	log := h.log.WithFields(logrus.Fields{"league": league, "game_id": gameID})

	if h.deps.Cache != nil {
		game, err := h.deps.Cache.GetBoxscore(r.Context(), league, gameID)
		switch {
		case err == nil:
			respondJSON(w, http.StatusOK, newBoxscorePayload("cache", game))
			return
		case !errors.Is(err, cache.ErrCacheMiss):
			log.WithError(err).Warn("cache lookup failed")
		}
	}

	if h.deps.Boxscores == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage unavailable", nil)
		return
	}
	rec, err := h.deps.Boxscores.Get(r.Context(), league, gameID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Boxscore not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch boxscore", err)
		return
	}
	respondJSON(w, http.StatusOK, newBoxscorePayload("database", rec.Boxscore))
}

// IngestGame handles POST /api/v1/games/{league}/{gameID}/ingest.
func (h *Handler) IngestGame(w http.ResponseWriter, r *http.Request) {
	league, gameID, ok := gameVars(w, r)
	if !ok {
		return
	}
	if h.deps.Ingester == nil {
		respondError(w, http.StatusServiceUnavailable, "Ingestion unavailable", nil)
		return
	}

	game, err := h.deps.Ingester.Ingest(r.Context(), league, gameID)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, newBoxscorePayload("ingest", game))
	case errors.Is(err, batch.ErrUnknownLeague):
		respondError(w, http.StatusBadRequest, "Unsupported league", err)
	case errors.Is(err, nba.ErrNotFinal) && h.deps.Watcher != nil && h.deps.Watcher.Watch(league, gameID):
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"league":  league,
			"game_id": gameID,
			"status":  "watching",
			"message": "game is not final; it will be ingested once it is",
		})
	case errors.Is(err, nba.ErrNotFinal):
		respondError(w, http.StatusConflict, "Game is not final", err)
	default:
		h.log.WithError(err).WithFields(logrus.Fields{"league": league, "game_id": gameID}).Warn("ingest failed")
		respondError(w, http.StatusBadGateway, "Failed to ingest game", err)
	}
}

// GetRankings handles GET /api/v1/rankings?league=&date=&category=&games=.
// games is a comma-separated ID list and takes precedence over date.
func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	league := strings.ToLower(q.Get("league"))
	if !validLeague(league) {
		respondError(w, http.StatusBadRequest, "league must be bleague or nba", nil)
		return
	}
	if h.deps.Boxscores == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage unavailable", nil)
		return
	}

	date := q.Get("date")
	ids := splitList(q.Get("games"))
	if len(ids) == 0 && date == "" {
		respondError(w, http.StatusBadRequest, "date or games is required", nil)
		return
	}

	var (
		records []*store.BoxscoreRecord
		err     error
	)
	if len(ids) > 0 {
		records, err = h.deps.Boxscores.ListByIDs(r.Context(), league, ids)
	} else {
		records, err = h.deps.Boxscores.ListByDate(r.Context(), league, date)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	category := strings.TrimSpace(q.Get("category"))
	games := make([]*store.GameBoxscore, 0, len(records))
	for _, rec := range records {
		if category != "" && !strings.EqualFold(rec.Boxscore.LeagueType, category) {
			continue
		}
		games = append(games, rec.Boxscore)
	}
	if date == "" && len(games) > 0 {
		date = games[0].Date
	}
	if category == "" {
		category = league
	}

	respondJSON(w, http.StatusOK, rank.Build(category, strings.ReplaceAll(date, ".", ""), games))
}

func gameVars(w http.ResponseWriter, r *http.Request) (league, gameID string, ok bool) {
	vars := mux.Vars(r)
	league = strings.ToLower(vars["league"])
	gameID = strings.TrimSpace(vars["gameID"])
	if !validLeague(league) {
		respondError(w, http.StatusBadRequest, "league must be bleague or nba", nil)
		return "", "", false
	}
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "game ID is required", nil)
		return "", "", false
	}
	return league, gameID, true
}

func validLeague(league string) bool {
	return league == store.LeagueBLeague || league == store.LeagueNBA
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
