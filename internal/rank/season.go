package rank

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// TeamSeason is one team's per-game averages over a set of games.
type TeamSeason struct {
	TeamKey string           `json:"team_key"`
	Team    string           `json:"team"`
	Games   int              `json:"games"`
	Totals  store.TeamTotals `json:"totals"`

	Points    float64 `json:"pts"`
	Assists   float64 `json:"ast"`
	Rebounds  float64 `json:"reb"`
	Steals    float64 `json:"stl"`
	Blocks    float64 `json:"blk"`
	Turnovers float64 `json:"tov"`
	Fouls     float64 `json:"pf"`

	FG2Pct float64 `json:"fg2_pct"`
	FG3Pct float64 `json:"fg3_pct"`
	FTPct  float64 `json:"ft_pct"`

	Pace            float64 `json:"pace"`
	OffensiveRating float64 `json:"ortg"`

	Ranks map[string]int `json:"ranks"`
}

// SeasonReport ranks every team seen in a set of games.
type SeasonReport struct {
	Category      string             `json:"category"`
	From          string             `json:"from"`
	To            string             `json:"to"`
	LeagueAverage map[string]float64 `json:"league_average"`
	Teams         []TeamSeason       `json:"teams"`
}

type seasonKey struct {
	name      string
	value     func(TeamSeason) float64
	ascending bool
}

// Turnovers rank lowest first.
var seasonKeys = []seasonKey{
	{name: "pts", value: func(t TeamSeason) float64 { return t.Points }},
	{name: "ast", value: func(t TeamSeason) float64 { return t.Assists }},
	{name: "reb", value: func(t TeamSeason) float64 { return t.Rebounds }},
	{name: "stl", value: func(t TeamSeason) float64 { return t.Steals }},
	{name: "blk", value: func(t TeamSeason) float64 { return t.Blocks }},
	{name: "tov", value: func(t TeamSeason) float64 { return t.Turnovers }, ascending: true},
	{name: "ortg", value: func(t TeamSeason) float64 { return t.OffensiveRating }},
	{name: "fg2_pct", value: func(t TeamSeason) float64 { return t.FG2Pct }},
	{name: "fg3_pct", value: func(t TeamSeason) float64 { return t.FG3Pct }},
	{name: "ft_pct", value: func(t TeamSeason) float64 { return t.FTPct }},
}

// BuildSeason sums every team's totals over games and derives per-game
// averages, pace, offensive rating, per-key ranks and the league average.
// Teams are keyed by identity key and listed by name. Ties rank in that order.
func BuildSeason(category string, games []*store.GameBoxscore) SeasonReport {
	report := SeasonReport{
		Category:      strings.ToUpper(strings.TrimSpace(category)),
		LeagueAverage: map[string]float64{},
		Teams:         []TeamSeason{},
	}

	byKey := make(map[string]*TeamSeason)
	for _, g := range games {
		if g == nil {
			continue
		}
		if g.Date != store.DateMissing {
			if report.From == "" || g.Date < report.From {
				report.From = g.Date
			}
			if g.Date > report.To {
				report.To = g.Date
			}
		}
		for _, side := range []store.TeamBox{g.Home, g.Away} {
			key := side.Identity.Key
			if key == "" {
				key = side.NameRaw
			}
			team, ok := byKey[key]
			if !ok {
				team = &TeamSeason{TeamKey: key, Team: side.Identity.FullName}
				if team.Team == "" {
					team.Team = side.NameRaw
				}
				byKey[key] = team
			}
			team.Games++
			addTotals(&team.Totals, side.Totals, side.Score)
		}
	}

	for _, team := range byKey {
		report.Teams = append(report.Teams, finishSeason(*team))
	}
	sort.Slice(report.Teams, func(i, j int) bool { return report.Teams[i].Team < report.Teams[j].Team })

	for _, k := range seasonKeys {
		order := make([]int, len(report.Teams))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			a, b := k.value(report.Teams[order[i]]), k.value(report.Teams[order[j]])
			if k.ascending {
				return a < b
			}
			return a > b
		})
		for pos, idx := range order {
			report.Teams[idx].Ranks[k.name] = pos + 1
		}

		if len(report.Teams) > 0 {
			var sum float64
			for _, t := range report.Teams {
				sum += k.value(t)
			}
			report.LeagueAverage[k.name] = stats.Round1(sum / float64(len(report.Teams)))
		}
	}
	return report
}

// addTotals accumulates a game's totals. The side's final score stands in
// for points.
func addTotals(sum *store.TeamTotals, t store.TeamTotals, score int) {
	sum.Points += score
	sum.FG2Made += t.FG2Made
	sum.FG2Attempted += t.FG2Attempted
	sum.FG3Made += t.FG3Made
	sum.FG3Attempted += t.FG3Attempted
	sum.FTMade += t.FTMade
	sum.FTAttempted += t.FTAttempted
	sum.OffReb += t.OffReb
	sum.DefReb += t.DefReb
	sum.Reb += t.Reb
	sum.Ast += t.Ast
	sum.TO += t.TO
	sum.Stl += t.Stl
	sum.Blk += t.Blk
	sum.PF += t.PF
}

func finishSeason(t TeamSeason) TeamSeason {
	n := float64(t.Games)
	avg := func(v int) float64 { return stats.Round1(float64(v) / n) }
	s := t.Totals

	t.Points = avg(s.Points)
	t.Assists = avg(s.Ast)
	t.Rebounds = avg(s.Reb)
	t.Steals = avg(s.Stl)
	t.Blocks = avg(s.Blk)
	t.Turnovers = avg(s.TO)
	t.Fouls = avg(s.PF)
	t.FG2Pct = stats.Pct(s.FG2Made, s.FG2Attempted)
	t.FG3Pct = stats.Pct(s.FG3Made, s.FG3Attempted)
	t.FTPct = stats.Pct(s.FTMade, s.FTAttempted)
	t.Pace = stats.Pace(s.Shots(), s.TO, t.Games)
	t.OffensiveRating = stats.OffensiveRating(s.Points, s.Shots(), s.TO)
	t.Ranks = make(map[string]int, len(seasonKeys))
	return t
}

// WriteSeason stores the report as {root}/{CATEGORY}/season.json and returns
// the file path.
func WriteSeason(root string, r SeasonReport) (string, error) {
	dir := filepath.Join(root, r.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create ranking dir: %w", err)
	}

	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode season report: %w", err)
	}

	path := filepath.Join(dir, "season.json")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write season report: %w", err)
	}
	return path, nil
}
