package nba

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
)

// ErrNotFinal is returned for games that have not finished.
var ErrNotFinal = errors.New("game is not final")

// Fetcher loads a decoded feed. Client implements it.
type Fetcher interface {
	FetchBoxscore(ctx context.Context, gameID string) (*Feed, error)
}

// Ingester produces assembled box scores for NBA games.
type Ingester struct {
	fetcher   Fetcher
	assembler *boxscore.Assembler
	log       *logrus.Entry
}

// NewIngester creates an ingester.
func NewIngester(fetcher Fetcher, assembler *boxscore.Assembler, logger *logrus.Logger) *Ingester {
	return &Ingester{
		fetcher:   fetcher,
		assembler: assembler,
		log:       logging.Component(logger, "nba"),
	}
}

// League returns the league key this ingester serves.
func (i *Ingester) League() string {
	return store.LeagueNBA
}

// Ingest fetches and assembles one finished game.
func (i *Ingester) Ingest(ctx context.Context, gameID string) (*store.GameBoxscore, error) {
	log := i.log.WithField("game_id", gameID)

	feed, err := i.fetcher.FetchBoxscore(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for %s: %w", gameID, err)
	}
	if s := feed.Game.GameStatus; s != 0 && s != StatusFinal {
		return nil, fmt.Errorf("%s (%s): %w", gameID, feed.Game.GameStatusText, ErrNotFinal)
	}

	in := BuildInput(feed)
	if in.GameID == "" {
		in.GameID = gameID
	}

	game, err := i.assembler.Assemble(in)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s: %w", gameID, err)
	}

	for _, side := range []store.TeamBox{game.Home, game.Away} {
		if side.Identity.Fallback {
			log.WithField("team", side.NameRaw).Warn("team not in alias table")
		}
	}
	log.WithFields(logrus.Fields{
		"home":  game.Home.Identity.FullName,
		"away":  game.Away.Identity.FullName,
		"score": fmt.Sprintf("%d-%d", game.Home.Score, game.Away.Score),
	}).Info("game assembled")
	return game, nil
}
