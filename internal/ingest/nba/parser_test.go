package nba

import (
	"errors"
	"os"
	"testing"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

func loadFeed(t *testing.T) *Feed {
	t.Helper()
	body, err := os.ReadFile("testdata/boxscore_0022400061.json")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	feed, err := DecodeFeed(body)
	if err != nil {
		t.Fatalf("DecodeFeed() error = %v", err)
	}
	return feed
}

func TestDecodeFeed(t *testing.T) {
	feed := loadFeed(t)

	if feed.Game.GameID != "0022400061" {
		t.Errorf("GameID = %q", feed.Game.GameID)
	}
	if feed.Game.GameStatus != StatusFinal {
		t.Errorf("GameStatus = %d, want %d", feed.Game.GameStatus, StatusFinal)
	}
	if len(feed.Game.HomeTeam.Players) != 3 || len(feed.Game.AwayTeam.Players) != 2 {
		t.Errorf("players = %d / %d", len(feed.Game.HomeTeam.Players), len(feed.Game.AwayTeam.Players))
	}
	if got := feed.Game.HomeTeam.Statistics.ReboundsTeamDefensive; got != 2 {
		t.Errorf("ReboundsTeamDefensive = %d, want 2", got)
	}
	if got := feed.Game.HomeTeam.Statistics.ReboundsTotal; got != 14 {
		t.Errorf("team ReboundsTotal = %d, want 14", got)
	}
}

func TestDecodeFeed_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantEmpty bool
	}{
		{"empty", "", true},
		{"whitespace", " \n ", true},
		{"no game", `{"meta":{"code":200}}`, true},
		{"html", "<html><body>Access Denied</body></html>", false},
		{"malformed", `{"game": `, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFeed([]byte(tt.body))
			if err == nil {
				t.Fatal("DecodeFeed() error = nil")
			}
			if got := errors.Is(err, ErrEmptyFeed); got != tt.wantEmpty {
				t.Errorf("errors.Is(%v, ErrEmptyFeed) = %v, want %v", err, got, tt.wantEmpty)
			}
		})
	}
}

func TestGameDate(t *testing.T) {
	tests := []struct {
		name string
		game Game
		want string
	}{
		{"local", Game{GameTimeLocal: "2024-10-22T19:30:00-04:00", GameTimeUTC: "2024-10-22T23:30:00Z"}, "2024.10.22"},
		{"utc fallback", Game{GameTimeUTC: "2024-10-23T02:00:00Z"}, "2024.10.23"},
		{"no time part", Game{GameTimeLocal: "2024-10-22"}, store.DateMissing},
		{"missing", Game{}, store.DateMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GameDate(tt.game); got != tt.want {
				t.Errorf("GameDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlayerLine(t *testing.T) {
	feed := loadFeed(t)
	players := feed.Game.HomeTeam.Players

	t.Run("starter", func(t *testing.T) {
		line := PlayerLine(players[0])
		if line.NameNative != "LeBron James" || line.Jersey != "23" || !line.Starter {
			t.Errorf("identity = %q #%s starter %v", line.NameNative, line.Jersey, line.Starter)
		}
		if line.Minutes != "35:12" || line.DidNotPlay {
			t.Errorf("minutes = %q dnp %v", line.Minutes, line.DidNotPlay)
		}
		if line.FG2Made != 8 || line.FG2Attempted != 12 || line.FG3Made != 2 || line.FG3Attempted != 6 {
			t.Errorf("shots = %d/%d %d/%d", line.FG2Made, line.FG2Attempted, line.FG3Made, line.FG3Attempted)
		}
		if line.PlusMinus != "+7" {
			t.Errorf("PlusMinus = %q, want +7", line.PlusMinus)
		}
		d := stats.Derive(line.Shots())
		if d.FG2.Pct != 66.7 || d.FG.Pct != 55.6 {
			t.Errorf("FG2 %.1f FG %.1f, want 66.7 55.6", d.FG2.Pct, d.FG.Pct)
		}
		if line.Shots().Points() != line.Points {
			t.Errorf("points from makes = %d, want %d", line.Shots().Points(), line.Points)
		}
	})

	t.Run("bench", func(t *testing.T) {
		line := PlayerLine(players[1])
		if line.Starter || line.Minutes != "24:05" || line.PlusMinus != "-2" {
			t.Errorf("line = starter %v min %q pm %q", line.Starter, line.Minutes, line.PlusMinus)
		}
	})

	t.Run("inactive", func(t *testing.T) {
		line := PlayerLine(players[2])
		if !line.DidNotPlay || line.Minutes != "DNP" || line.PlusMinus != "0" {
			t.Errorf("line = dnp %v min %q pm %q", line.DidNotPlay, line.Minutes, line.PlusMinus)
		}
	})

	t.Run("played flag overrides minutes", func(t *testing.T) {
		p := players[1]
		p.Played = "0"
		if line := PlayerLine(p); !line.DidNotPlay {
			t.Error("DidNotPlay = false, want true")
		}
	})

	t.Run("name fallback", func(t *testing.T) {
		p := Player{Name: "Nene", Statistics: PlayerStatistics{Minutes: "PT10M00.00S"}}
		if got := PlayerLine(p).NameNative; got != "Nene" {
			t.Errorf("NameNative = %q, want Nene", got)
		}
	})
}

func TestBuildInput(t *testing.T) {
	in := BuildInput(loadFeed(t))

	if in.League != store.LeagueNBA || in.GameID != "0022400061" || !in.LatinScript {
		t.Errorf("header = %s %s latin %v", in.League, in.GameID, in.LatinScript)
	}
	if in.Date != "2024.10.22" || in.LeagueType != LeagueType || in.Round != store.RoundMissing {
		t.Errorf("info = %s %s %s", in.Date, in.LeagueType, in.Round)
	}
	if in.VenueRaw != "Crypto.com Arena" || in.Attendance != 18997 {
		t.Errorf("venue = %q attendance %d", in.VenueRaw, in.Attendance)
	}
	if in.Home.NameRaw != "Los Angeles Lakers" || in.Away.NameRaw != "Boston Celtics" {
		t.Errorf("teams = %q / %q", in.Home.NameRaw, in.Away.NameRaw)
	}

	sup := in.Home.Supplemental
	if sup == nil || sup.OffReb != 1 || sup.DefReb != 2 || sup.TO != 1 {
		t.Errorf("home supplemental = %+v", sup)
	}
	if in.Home.ExplicitRebounds != 14 || in.Home.Score != 39 || in.Away.Score != 42 {
		t.Errorf("explicit = reb %d score %d-%d", in.Home.ExplicitRebounds, in.Home.Score, in.Away.Score)
	}
}

func TestTeamDisplayName(t *testing.T) {
	tests := []struct {
		team Team
		want string
	}{
		{Team{TeamCity: "Boston", TeamName: "Celtics"}, "Boston Celtics"},
		{Team{TeamName: "Celtics"}, "Celtics"},
		{Team{TeamCity: "Boston"}, "Boston"},
	}
	for _, tt := range tests {
		if got := tt.team.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}
