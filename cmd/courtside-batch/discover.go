package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/ingest/nba"
)

// gameLister lists the games scheduled on one day.
type gameLister interface {
	FetchGameIDs(ctx context.Context, date time.Time) ([]string, error)
}

// gameDays turns the -date/-from/-to flags (YYYY-MM-DD) into the days to
// scan. -date wins; -to defaults to -from.
func gameDays(date, from, to string) ([]time.Time, error) {
	if date != "" {
		from, to = date, date
	}
	if from == "" {
		return nil, fmt.Errorf("-to needs -from")
	}
	if to == "" {
		to = from
	}

	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", from, err)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", to, err)
	}
	days := nba.DatesBetween(start, end)
	if len(days) == 0 {
		return nil, fmt.Errorf("-to %s is before -from %s", to, from)
	}
	return days, nil
}

// discoverGameIDs asks the scoreboard for every day, pausing between
// requests. A failed day is logged and skipped.
func discoverGameIDs(ctx context.Context, lister gameLister, days []time.Time, delay time.Duration, log *logrus.Entry) []string {
	var ids []string
	for i, day := range days {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ids
			case <-time.After(delay):
			}
		}

		found, err := lister.FetchGameIDs(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return ids
			}
			log.WithError(err).Warnf("✗ scoreboard %s", day.Format(time.DateOnly))
			continue
		}
		log.WithField("games", len(found)).Infof("scoreboard %s", day.Format(time.DateOnly))
		ids = append(ids, found...)
	}
	return ids
}

// mergeIDs appends extra to ids, dropping duplicates and keeping first-seen
// order.
func mergeIDs(ids, extra []string) []string {
	seen := make(map[string]bool, len(ids)+len(extra))
	var out []string
	for _, id := range append(append([]string(nil), ids...), extra...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
