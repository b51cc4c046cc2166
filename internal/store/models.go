package store

import (
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/identity"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/stats"
)

// Missing-value markers written when a game-info field cannot be found.
const (
	DateMissing   = "DATE_MISSING"
	LeagueMissing = "LEAGUE_MISSING"
	RoundMissing  = "ROUND_MISSING"
)

// Supported leagues.
const (
	LeagueBLeague = "bleague"
	LeagueNBA     = "nba"
)

// TeamIdentity and VenueIdentity are the resolved identities stored on a game.
type (
	TeamIdentity  = identity.Team
	VenueIdentity = identity.Venue
)

// RawPlayerLine is one parsed table row or feed entry. Unparseable numbers
// are 0.
type RawPlayerLine struct {
	Jersey     string `json:"jersey"`
	NameNative string `json:"name_native"`
	NameLatin  string `json:"name_latin,omitempty"`
	Minutes    string `json:"minutes"`
	Points     int    `json:"points"`

	FG2Made      int `json:"fg2_made"`
	FG2Attempted int `json:"fg2_attempted"`
	FG3Made      int `json:"fg3_made"`
	FG3Attempted int `json:"fg3_attempted"`
	FTMade       int `json:"ft_made"`
	FTAttempted  int `json:"ft_attempted"`

	OffReb int `json:"off_reb"`
	DefReb int `json:"def_reb"`
	Reb    int `json:"reb"`
	Ast    int `json:"ast"`
	TO     int `json:"to"`
	Stl    int `json:"stl"`
	Blk    int `json:"blk"`
	PF     int `json:"pf"`

	PlusMinus  string `json:"plus_minus,omitempty"`
	Starter    bool   `json:"starter"`
	DidNotPlay bool   `json:"did_not_play"`
	DetailURL  string `json:"detail_url,omitempty"`
}

// Normalize enforces attempted >= made per shot category and rebuilds a zero
// total-rebound figure from a non-zero offensive/defensive split.
func (l *RawPlayerLine) Normalize() {
	l.FG2Attempted = max(l.FG2Attempted, l.FG2Made)
	l.FG3Attempted = max(l.FG3Attempted, l.FG3Made)
	l.FTAttempted = max(l.FTAttempted, l.FTMade)
	if l.Reb == 0 && l.OffReb+l.DefReb > 0 {
		l.Reb = l.OffReb + l.DefReb
	}
}

// IsTeamRow reports whether the line is the synthetic team aggregate row.
func (l RawPlayerLine) IsTeamRow() bool {
	return strings.Contains(strings.ToUpper(l.NameNative), "TEAM")
}

// Playing reports whether the line counts toward team totals.
func (l RawPlayerLine) Playing() bool {
	return !l.DidNotPlay && !l.IsTeamRow()
}

// Shots returns the line's shooting counts.
func (l RawPlayerLine) Shots() stats.ShotCounts {
	return stats.ShotCounts{
		TwoMade:        l.FG2Made,
		TwoAttempted:   l.FG2Attempted,
		ThreeMade:      l.FG3Made,
		ThreeAttempted: l.FG3Attempted,
		FTMade:         l.FTMade,
		FTAttempted:    l.FTAttempted,
	}
}

// TeamTotals is the aggregate for one side. Reb always equals
// OffReb + DefReb.
type TeamTotals struct {
	Points       int `json:"points"`
	FG2Made      int `json:"fg2_made"`
	FG2Attempted int `json:"fg2_attempted"`
	FG3Made      int `json:"fg3_made"`
	FG3Attempted int `json:"fg3_attempted"`
	FTMade       int `json:"ft_made"`
	FTAttempted  int `json:"ft_attempted"`
	OffReb       int `json:"off_reb"`
	DefReb       int `json:"def_reb"`
	Reb          int `json:"reb"`
	Ast          int `json:"ast"`
	TO           int `json:"to"`
	Stl          int `json:"stl"`
	Blk          int `json:"blk"`
	PF           int `json:"pf"`
}

// Shots returns the team's shooting counts.
func (t TeamTotals) Shots() stats.ShotCounts {
	return stats.ShotCounts{
		TwoMade:        t.FG2Made,
		TwoAttempted:   t.FG2Attempted,
		ThreeMade:      t.FG3Made,
		ThreeAttempted: t.FG3Attempted,
		FTMade:         t.FTMade,
		FTAttempted:    t.FTAttempted,
	}
}

// PlayerLine is a raw line with its resolved name and derived splits.
type PlayerLine struct {
	RawPlayerLine
	Name    names.Name    `json:"name"`
	Derived stats.Derived `json:"derived"`
}

// TeamBox is one side of a game.
type TeamBox struct {
	Identity TeamIdentity  `json:"identity"`
	NameRaw  string        `json:"name_raw"`
	Score    int           `json:"score"`
	Totals   TeamTotals    `json:"totals"`
	Derived  stats.Derived `json:"derived"`
	Players  []PlayerLine  `json:"players"`
}

// Starters returns the starting lineup in source order.
func (t TeamBox) Starters() []PlayerLine {
	var out []PlayerLine
	for _, p := range t.Players {
		if p.Starter {
			out = append(out, p)
		}
	}
	return out
}

// GameBoxscore is the assembled record for one final game. It is built once
// and not modified by consumers.
type GameBoxscore struct {
	League     string        `json:"league"`
	GameID     string        `json:"game_id"`
	Date       string        `json:"date"`
	LeagueType string        `json:"league_type,omitempty"`
	Round      string        `json:"round,omitempty"`
	Venue      VenueIdentity `json:"venue"`
	Attendance int           `json:"attendance"`
	Home       TeamBox       `json:"home"`
	Away       TeamBox       `json:"away"`
}

// Score returns the home and away scores.
func (g *GameBoxscore) Score() (home, away int) {
	return g.Home.Score, g.Away.Score
}

// Winner returns the winning side, or nil on a tie.
func (g *GameBoxscore) Winner() *TeamBox {
	switch {
	case g.Home.Score > g.Away.Score:
		return &g.Home
	case g.Away.Score > g.Home.Score:
		return &g.Away
	default:
		return nil
	}
}

// ScoreColors returns the score colors for home and away.
func (g *GameBoxscore) ScoreColors() (home, away string) {
	return identity.WinnerScoreColor(g.Home.Identity, g.Home.Score, g.Away.Score),
		identity.WinnerScoreColor(g.Away.Identity, g.Away.Score, g.Home.Score)
}

// BoxscoreRecord is a persisted boxscore row.
type BoxscoreRecord struct {
	League    string        `json:"league" db:"league"`
	GameID    string        `json:"game_id" db:"game_id"`
	GameDate  string        `json:"game_date" db:"game_date"`
	HomeKey   string        `json:"home_key" db:"home_key"`
	AwayKey   string        `json:"away_key" db:"away_key"`
	HomeScore int           `json:"home_score" db:"home_score"`
	AwayScore int           `json:"away_score" db:"away_score"`
	Boxscore  *GameBoxscore `json:"boxscore" db:"payload"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Batch job states. A job with some failed games ends JobPartial.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobPartial   = "partial"
	JobFailed    = "failed"
)

// BatchJob tracks one batch ingestion run.
type BatchJob struct {
	JobID         string     `json:"job_id" db:"job_id"`
	League        string     `json:"league" db:"league"`
	GameIDs       []string   `json:"game_ids" db:"game_ids"`
	Status        string     `json:"status" db:"status"`
	GamesTotal    int        `json:"games_total" db:"games_total"`
	GamesDone     int        `json:"games_done" db:"games_done"`
	GamesFailed   int        `json:"games_failed" db:"games_failed"`
	FailedGameIDs []string   `json:"failed_game_ids" db:"failed_game_ids"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage  string     `json:"error_message,omitempty" db:"error_message"`
}
