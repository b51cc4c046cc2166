package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/batch"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/rank"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/testutil"
)

type mockStore struct {
	games map[string]*store.GameBoxscore
	err   error
}

func newMockStore(games ...*store.GameBoxscore) *mockStore {
	m := &mockStore{games: make(map[string]*store.GameBoxscore)}
	for _, g := range games {
		m.games[g.League+"/"+g.GameID] = g
	}
	return m
}

func record(g *store.GameBoxscore) *store.BoxscoreRecord {
	home, away := g.Score()
	return &store.BoxscoreRecord{
		League: g.League, GameID: g.GameID, GameDate: g.Date,
		HomeScore: home, AwayScore: away, Boxscore: g,
	}
}

func (m *mockStore) Get(_ context.Context, league, gameID string) (*store.BoxscoreRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	g, ok := m.games[league+"/"+gameID]
	if !ok {
		return nil, fmt.Errorf("boxscore %s/%s: %w", league, gameID, store.ErrNotFound)
	}
	return record(g), nil
}

func (m *mockStore) ListByIDs(_ context.Context, league string, ids []string) ([]*store.BoxscoreRecord, error) {
	var out []*store.BoxscoreRecord
	for _, id := range ids {
		if g, ok := m.games[league+"/"+id]; ok {
			out = append(out, record(g))
		}
	}
	return out, m.err
}

func (m *mockStore) ListByDate(_ context.Context, league, date string) ([]*store.BoxscoreRecord, error) {
	var out []*store.BoxscoreRecord
	for _, g := range m.games {
		if g.League == league && g.Date == date {
			out = append(out, record(g))
		}
	}
	return out, m.err
}

type mockCache struct {
	game *store.GameBoxscore
	err  error
}

func (c *mockCache) GetBoxscore(context.Context, string, string) (*store.GameBoxscore, error) {
	if c.game == nil && c.err == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.game, c.err
}

type mockIngester struct {
	err error
}

func (i *mockIngester) Ingest(_ context.Context, league, gameID string) (*store.GameBoxscore, error) {
	if i.err != nil {
		return nil, i.err
	}
	g := testutil.MockBoxscore(gameID)
	g.League = league
	return g, nil
}

type mockWatcher struct {
	accept  bool
	watched []string
}

func (w *mockWatcher) Watch(league, gameID string) bool {
	w.watched = append(w.watched, league+"/"+gameID)
	return w.accept
}

type mockCheck struct{ err error }

func (c mockCheck) HealthCheck(context.Context) error { return c.err }

func serve(h *Handler, bh *BatchHandler, method, target, body string) *httptest.ResponseRecorder {
	router := NewRouter(h, bh, logging.Discard())
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthChecker
		want   int
		state  string
	}{
		{"no dependencies", nil, http.StatusOK, "healthy"},
		{"all up", map[string]HealthChecker{"database": mockCheck{}, "redis": mockCheck{}}, http.StatusOK, "healthy"},
		{"redis down", map[string]HealthChecker{"database": mockCheck{}, "redis": mockCheck{errors.New("refused")}}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(Deps{Checks: tt.checks}, logging.Discard())
			rec := serve(h, nil, "GET", "/health", "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			var body map[string]interface{}
			decode(t, rec, &body)
			if body["status"] != tt.state {
				t.Errorf("status field = %v, want %s", body["status"], tt.state)
			}
		})
	}
}

func TestGetBoxscore(t *testing.T) {
	stored := testutil.MockBoxscore("505001")
	cached := testutil.MockBoxscore("505002")

	tests := []struct {
		name     string
		deps     Deps
		target   string
		wantCode int
		source   string
	}{
		{
			name:     "cache hit",
			deps:     Deps{Cache: &mockCache{game: cached}, Boxscores: newMockStore()},
			target:   "/api/v1/games/bleague/505002/boxscore",
			wantCode: http.StatusOK,
			source:   "cache",
		},
		{
			name:     "cache miss falls back to database",
			deps:     Deps{Cache: &mockCache{}, Boxscores: newMockStore(stored)},
			target:   "/api/v1/games/BLEAGUE/505001/boxscore",
			wantCode: http.StatusOK,
			source:   "database",
		},
		{
			name:     "cache error falls back to database",
			deps:     Deps{Cache: &mockCache{err: errors.New("timeout")}, Boxscores: newMockStore(stored)},
			target:   "/api/v1/games/bleague/505001/boxscore",
			wantCode: http.StatusOK,
			source:   "database",
		},
		{
			name:     "not found",
			deps:     Deps{Boxscores: newMockStore()},
			target:   "/api/v1/games/bleague/999/boxscore",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "database error",
			deps:     Deps{Boxscores: &mockStore{err: errors.New("conn reset")}},
			target:   "/api/v1/games/bleague/505001/boxscore",
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "no storage",
			deps:     Deps{},
			target:   "/api/v1/games/nba/0022400061/boxscore",
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "unknown league",
			deps:     Deps{Boxscores: newMockStore(stored)},
			target:   "/api/v1/games/euroleague/1/boxscore",
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.deps, logging.Discard()), nil, "GET", tt.target, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.source == "" {
				return
			}
			var body boxscorePayload
			decode(t, rec, &body)
			if body.Source != tt.source {
				t.Errorf("source = %q, want %q", body.Source, tt.source)
			}
			if body.Score["home"] != 80 || body.Score["away"] != 75 {
				t.Errorf("score = %v", body.Score)
			}
			if body.Winner != body.Boxscore.Home.Identity.Key {
				t.Errorf("winner = %q, want home", body.Winner)
			}
			if body.ScoreColors["home"] == "" || body.ScoreColors["away"] == "" {
				t.Errorf("score colors = %v", body.ScoreColors)
			}
		})
	}
}

func TestIngestGame(t *testing.T) {
	tests := []struct {
		name     string
		deps     Deps
		wantCode int
	}{
		{"assembled", Deps{Ingester: &mockIngester{}}, http.StatusCreated},
		{"not final", Deps{Ingester: &mockIngester{err: fmt.Errorf("game 1: %w", nba.ErrNotFinal)}}, http.StatusConflict},
		{"not final, watched", Deps{Ingester: &mockIngester{err: nba.ErrNotFinal}, Watcher: &mockWatcher{accept: true}}, http.StatusAccepted},
		{"not final, watch queue full", Deps{Ingester: &mockIngester{err: nba.ErrNotFinal}, Watcher: &mockWatcher{}}, http.StatusConflict},
		{"failure is not watched", Deps{Ingester: &mockIngester{err: errors.New("curl exit 22")}, Watcher: &mockWatcher{accept: true}}, http.StatusBadGateway},
		{"unknown league", Deps{Ingester: &mockIngester{err: batch.ErrUnknownLeague}}, http.StatusBadRequest},
		{"upstream failure", Deps{Ingester: &mockIngester{err: errors.New("curl exit 22")}}, http.StatusBadGateway},
		{"no ingester", Deps{}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.deps, logging.Discard()), nil, "POST", "/api/v1/games/nba/0022400061/ingest", "")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if w, ok := tt.deps.Watcher.(*mockWatcher); ok && tt.wantCode == http.StatusAccepted {
				if len(w.watched) != 1 || w.watched[0] != "nba/0022400061" {
					t.Errorf("watched = %v", w.watched)
				}
			}
		})
	}

	rec := serve(NewHandler(Deps{Ingester: &mockIngester{}}, logging.Discard()), nil, "GET", "/api/v1/games/nba/1/ingest", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET ingest status = %d, want 405", rec.Code)
	}
}

func TestGetRankings(t *testing.T) {
	g1 := testutil.MockBoxscore("505001")
	g2 := testutil.MockBoxscore("505002")
	g2.Home.Players[0].Points = 31
	g2.LeagueType = "B2"
	h := NewHandler(Deps{Boxscores: newMockStore(g1, g2)}, logging.Discard())

	t.Run("by ids", func(t *testing.T) {
		rec := serve(h, nil, "GET", "/api/v1/rankings?league=bleague&games=505002,505001,404", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
		}
		var r rank.Ranking
		decode(t, rec, &r)
		if r.Date != "20251004" || r.Category != "BLEAGUE" {
			t.Errorf("date %q category %q", r.Date, r.Category)
		}
		if len(r.Points) != 4 || r.Points[0].Points != 31 || r.Points[0].GameID != "505002" {
			t.Errorf("points board = %+v", r.Points)
		}
	})

	t.Run("by date and category", func(t *testing.T) {
		rec := serve(h, nil, "GET", "/api/v1/rankings?league=bleague&date=2025.10.04&category=b1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
		}
		var r rank.Ranking
		decode(t, rec, &r)
		if r.Category != "B1" || len(r.Points) != 2 {
			t.Errorf("category %q points %+v", r.Category, r.Points)
		}
		for _, e := range r.Points {
			if e.GameID != "505001" {
				t.Errorf("entry from filtered game %s", e.GameID)
			}
		}
	})

	for _, target := range []string{
		"/api/v1/rankings?league=wnba&date=2025.10.04",
		"/api/v1/rankings?league=bleague",
	} {
		if rec := serve(h, nil, "GET", target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(NewHandler(Deps{}, logging.Discard()), nil, "OPTIONS", "/api/v1/rankings", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(logging.Component(logging.Discard(), "test")))
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
