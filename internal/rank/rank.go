// Package rank builds per-day leader boards from assembled games.
package rank

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/fortuna/courtside/internal/store"
)

// TopN is the length of every leader board.
const TopN = 10

var whitespace = regexp.MustCompile(`\s+`)

// Entry is one player on a leader board.
type Entry struct {
	Name     string `json:"name"`
	Jersey   string `json:"no"`
	Team     string `json:"team"`
	TeamKey  string `json:"team_key"`
	GameID   string `json:"game_id"`
	Minutes  string `json:"min"`
	Points   int    `json:"pts"`
	Rebounds int    `json:"reb"`
	Assists  int    `json:"ast"`
	CardPath string `json:"card_path"`
}

// Ranking holds the three leader boards for one category and day.
type Ranking struct {
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Points   []Entry `json:"pts"`
	Rebounds []Entry `json:"reb"`
	Assists  []Entry `json:"ast"`
}

// Build ranks every player of the given games by points, rebounds and
// assists. date is "YYYYMMDD". Ties keep game and roster order.
func Build(category, date string, games []*store.GameBoxscore) Ranking {
	category = strings.ToUpper(strings.TrimSpace(category))

	var all []Entry
	for _, g := range games {
		if g == nil {
			continue
		}
		for _, side := range []store.TeamBox{g.Home, g.Away} {
			for _, p := range side.Players {
				all = append(all, Entry{
					Name:     strings.ToUpper(strings.TrimSpace(p.Name.Display)),
					Jersey:   p.Jersey,
					Team:     side.Identity.FullName,
					TeamKey:  side.Identity.Key,
					GameID:   g.GameID,
					Minutes:  p.Minutes,
					Points:   p.Points,
					Rebounds: p.Reb,
					Assists:  p.Ast,
					CardPath: CardPath(category, date, g, side, p),
				})
			}
		}
	}

	return Ranking{
		Category: category,
		Date:     date,
		Points:   top(all, func(e Entry) int { return e.Points }),
		Rebounds: top(all, func(e Entry) int { return e.Rebounds }),
		Assists:  top(all, func(e Entry) int { return e.Assists }),
	}
}

func top(entries []Entry, key func(Entry) int) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	if len(sorted) > TopN {
		sorted = sorted[:TopN]
	}
	return sorted
}

// CardPath is where the renderer writes a player's card:
// output/Bplayers/{CAT}/{yyMMdd}/game_{id}_{home}_{away}_{date}/{TEAM}_{no}_{NAME}_{date}.png
func CardPath(category, date string, g *store.GameBoxscore, side store.TeamBox, p store.PlayerLine) string {
	short := date
	if len(date) == 8 {
		short = date[2:]
	}
	folder := fmt.Sprintf("game_%s_%s_%s_%s",
		g.GameID, pathToken(g.Home.Identity.FullName), pathToken(g.Away.Identity.FullName), date)
	file := fmt.Sprintf("%s_%s_%s_%s.png",
		pathToken(side.Identity.FullName), p.Jersey, pathToken(p.Name.FileSafe), date)

	return strings.Join([]string{"output", "Bplayers", strings.ToUpper(category), short, folder, file}, "/")
}

func pathToken(s string) string {
	return whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "_")
}

// Write stores the ranking as {root}/{CATEGORY}/{date}.json and returns the
// file path.
func Write(root string, r Ranking) (string, error) {
	dir := filepath.Join(root, r.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create ranking dir: %w", err)
	}

	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ranking: %w", err)
	}

	path := filepath.Join(dir, r.Date+".json")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write ranking: %w", err)
	}
	return path, nil
}
