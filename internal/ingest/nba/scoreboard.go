package nba

import (
	"bytes"
	"fmt"
	"time"
)

// gameIDColumn is GAME_ID's position in the GameHeader row set when the
// headers are missing.
const gameIDColumn = 2

type scoreboard struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// DecodeScoreboard returns the game IDs of a scoreboardv2 response in row
// order, without duplicates. A day without games gives an empty list.
func DecodeScoreboard(body []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyFeed
	}
	if trimmed[0] == '<' {
		return nil, fmt.Errorf("scoreboard returned HTML error page: %s", preview(trimmed))
	}

	var sb scoreboard
	if err := json.Unmarshal(trimmed, &sb); err != nil {
		return nil, fmt.Errorf("decoding scoreboard: %w (body: %s)", err, preview(trimmed))
	}
	if len(sb.ResultSets) == 0 {
		return nil, fmt.Errorf("scoreboard has no result sets")
	}

	set := sb.ResultSets[0]
	for _, rs := range sb.ResultSets {
		if rs.Name == "GameHeader" {
			set = rs
			break
		}
	}
	col := gameIDColumn
	for i, h := range set.Headers {
		if h == "GAME_ID" {
			col = i
			break
		}
	}

	ids := []string{}
	seen := make(map[string]bool)
	for _, row := range set.RowSet {
		if col >= len(row) {
			continue
		}
		id, ok := row[col].(string)
		if !ok || !gameIDPattern.MatchString(id) || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// DatesBetween lists every calendar day from from to to inclusive. It is
// empty when to is before from.
func DatesBetween(from, to time.Time) []time.Time {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
