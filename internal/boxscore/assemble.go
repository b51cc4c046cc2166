// Package boxscore turns parsed player lines into an assembled GameBoxscore:
// team aggregation, rebound reconciliation, derived statistics, identity and
// name resolution.
package boxscore

import (
	"errors"
	"strings"

	"github.com/fortuna/courtside/internal/identity"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// ErrNoPlayers is returned when neither side yields a single playing line.
var ErrNoPlayers = errors.New("no player rows extracted")

// Side is the parsed input for one team.
type Side struct {
	NameRaw      string
	Lines        []store.RawPlayerLine
	Supplemental *Supplemental

	// ExplicitRebounds is the source's printed team rebound total, 0 if none.
	ExplicitRebounds int
	// Score is the source's printed score, 0 to derive it from player points.
	Score int
}

// Input is everything one parse pass extracted for a game.
type Input struct {
	League     string
	GameID     string
	Date       string
	LeagueType string
	Round      string
	VenueRaw   string
	Attendance int
	Home       Side
	Away       Side

	// LatinScript marks sources whose player names are already latinized.
	LatinScript bool
}

// Assembler builds GameBoxscores. It holds only read-only lookup tables, so
// one Assembler can serve concurrent games.
type Assembler struct {
	resolver *identity.Resolver
	names    *names.Normalizer
}

// NewAssembler creates an assembler over the given resolver and normalizer.
func NewAssembler(resolver *identity.Resolver, normalizer *names.Normalizer) *Assembler {
	return &Assembler{resolver: resolver, names: normalizer}
}

// Assemble builds the game record. It fails only with ErrNoPlayers.
func (a *Assembler) Assemble(in Input) (*store.GameBoxscore, error) {
	home := a.side(in.Home, in.LatinScript)
	away := a.side(in.Away, in.LatinScript)
	if len(home.Players) == 0 && len(away.Players) == 0 {
		return nil, ErrNoPlayers
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = store.DateMissing
	}

	return &store.GameBoxscore{
		League:     in.League,
		GameID:     in.GameID,
		Date:       date,
		LeagueType: in.LeagueType,
		Round:      in.Round,
		Venue:      a.resolver.ResolveVenue(in.VenueRaw),
		Attendance: in.Attendance,
		Home:       home,
		Away:       away,
	}, nil
}

func (a *Assembler) side(s Side, latinScript bool) store.TeamBox {
	totals := ReconcileRebounds(Aggregate(s.Lines, s.Supplemental), s.ExplicitRebounds)

	box := store.TeamBox{
		Identity: a.resolver.ResolveTeam(s.NameRaw),
		NameRaw:  s.NameRaw,
		Score:    s.Score,
		Totals:   totals,
		Derived:  stats.Derive(totals.Shots()),
	}

	sourceScore := 0
	for _, line := range s.Lines {
		l := line
		l.Normalize()
		if l.IsTeamRow() {
			continue
		}
		sourceScore += l.Points
		if l.DidNotPlay {
			continue
		}

		var name names.Name
		if latinScript {
			name = a.names.Latin(l.NameNative)
		} else {
			name = a.names.Resolve(l.NameNative, l.NameLatin)
		}
		box.Players = append(box.Players, store.PlayerLine{
			RawPlayerLine: l,
			Name:          name,
			Derived:       stats.Derive(l.Shots()),
		})
	}
	if box.Score == 0 {
		box.Score = sourceScore
	}
	box.Derived.Possessions = stats.Possessions(totals.Shots(), totals.TO)
	box.Derived.OffensiveRating = stats.OffensiveRating(box.Score, totals.Shots(), totals.TO)
	return box
}
