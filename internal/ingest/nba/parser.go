package nba

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// LeagueType is written on every NBA game; the feed has no round concept.
const LeagueType = "NBA"

// ErrEmptyFeed is returned for a feed without game data.
var ErrEmptyFeed = errors.New("feed has no game data")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeFeed parses a raw feed body.
func DecodeFeed(body []byte) (*Feed, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyFeed
	}
	if trimmed[0] == '<' {
		return nil, fmt.Errorf("feed returned HTML error page: %s", preview(trimmed))
	}

	var feed Feed
	if err := json.Unmarshal(trimmed, &feed); err != nil {
		return nil, fmt.Errorf("decoding feed: %w (body: %s)", err, preview(trimmed))
	}
	if feed.Game.GameID == "" && len(feed.Game.HomeTeam.Players) == 0 && len(feed.Game.AwayTeam.Players) == 0 {
		return nil, ErrEmptyFeed
	}
	return &feed, nil
}

func preview(b []byte) string {
	return string(b[:min(len(b), 200)])
}

// BuildInput maps a decoded feed onto assembler input. Names are already
// latinized and the feed's printed scores and rebound totals are kept.
func BuildInput(feed *Feed) boxscore.Input {
	g := feed.Game
	return boxscore.Input{
		League:      store.LeagueNBA,
		GameID:      g.GameID,
		Date:        GameDate(g),
		LeagueType:  LeagueType,
		Round:       store.RoundMissing,
		VenueRaw:    g.Arena.ArenaName,
		Attendance:  g.Attendance,
		Home:        side(g.HomeTeam),
		Away:        side(g.AwayTeam),
		LatinScript: true,
	}
}

// GameDate returns the local game date as "YYYY.MM.DD", falling back to the
// UTC timestamp and then to the missing marker.
func GameDate(g Game) string {
	for _, ts := range []string{g.GameTimeLocal, g.GameTimeUTC} {
		day, _, ok := strings.Cut(ts, "T")
		if ok && day != "" {
			return strings.ReplaceAll(day, "-", ".")
		}
	}
	return store.DateMissing
}

func side(t Team) boxscore.Side {
	lines := make([]store.RawPlayerLine, 0, len(t.Players))
	for _, p := range t.Players {
		lines = append(lines, PlayerLine(p))
	}

	s := t.Statistics
	return boxscore.Side{
		NameRaw: t.DisplayName(),
		Lines:   lines,
		Supplemental: &boxscore.Supplemental{
			OffReb: s.ReboundsTeamOffensive,
			DefReb: s.ReboundsTeamDefensive,
			TO:     s.TurnoversTeam,
		},
		ExplicitRebounds: s.ReboundsTotal,
		Score:            t.Score,
	}
}

// PlayerLine converts a roster entry. Two-point figures are split out of the
// combined field-goal counts.
func PlayerLine(p Player) store.RawPlayerLine {
	s := p.Statistics
	minutes, played := boxscore.NormalizeMinutes(s.Minutes)
	if p.Played == "0" || strings.EqualFold(p.Status, "INACTIVE") {
		played = false
	}
	if !played {
		minutes = "DNP"
	}

	fg2Made, fg2Att := stats.TwoPointFromCombined(
		s.FieldGoalsMade, s.FieldGoalsAttempted,
		s.ThreePointersMade, s.ThreePointersAttempted,
	)

	line := store.RawPlayerLine{
		Jersey:       p.JerseyNum,
		NameNative:   playerName(p),
		Minutes:      minutes,
		Points:       s.Points,
		FG2Made:      fg2Made,
		FG2Attempted: fg2Att,
		FG3Made:      s.ThreePointersMade,
		FG3Attempted: s.ThreePointersAttempted,
		FTMade:       s.FreeThrowsMade,
		FTAttempted:  s.FreeThrowsAttempted,
		OffReb:       s.ReboundsOffensive,
		DefReb:       s.ReboundsDefensive,
		Reb:          s.ReboundsTotal,
		Ast:          s.Assists,
		TO:           s.Turnovers,
		Stl:          s.Steals,
		Blk:          s.Blocks,
		PF:           s.FoulsPersonal,
		PlusMinus:    plusMinus(s.PlusMinusPoints),
		Starter:      p.Starter == "1",
		DidNotPlay:   !played,
	}
	line.Normalize()
	return line
}

func playerName(p Player) string {
	if name := strings.TrimSpace(p.FirstName + " " + p.FamilyName); name != "" {
		return name
	}
	return strings.TrimSpace(p.Name)
}

func plusMinus(v float64) string {
	n := int(math.Round(v))
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
