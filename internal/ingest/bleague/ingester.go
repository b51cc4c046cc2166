package bleague

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/store"
)

// Fetcher loads league pages. Client implements it with a headless browser.
type Fetcher interface {
	FetchGamePage(ctx context.Context, gameID string, tab int) (*goquery.Document, error)
	FetchPlayerPage(ctx context.Context, link string) (*goquery.Document, error)
}

// Ingester produces assembled box scores for B.LEAGUE games.
type Ingester struct {
	fetcher    Fetcher
	assembler  *boxscore.Assembler
	allPlayers bool
	log        *logrus.Entry
}

// NewIngester creates an ingester. With allPlayers set, latinized names are
// looked up for every player instead of starters only.
func NewIngester(fetcher Fetcher, assembler *boxscore.Assembler, logger *logrus.Logger, allPlayers bool) *Ingester {
	return &Ingester{
		fetcher:    fetcher,
		assembler:  assembler,
		allPlayers: allPlayers,
		log:        logging.Component(logger, "bleague"),
	}
}

// League returns the league key this ingester serves.
func (i *Ingester) League() string {
	return store.LeagueBLeague
}

// Ingest fetches the summary and stats tabs of a game and assembles it.
func (i *Ingester) Ingest(ctx context.Context, gameID string) (*store.GameBoxscore, error) {
	log := i.log.WithField("game_id", gameID)

	info := ParseGameInfo("", "", "", "")
	infoDoc, err := i.fetcher.FetchGamePage(ctx, gameID, TabSummary)
	if err != nil {
		log.WithError(err).Warn("summary tab unavailable, game info left missing")
	} else {
		info = ParseInfoPage(infoDoc)
	}

	statsDoc, err := i.fetcher.FetchGamePage(ctx, gameID, TabStats)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats tab for %s: %w", gameID, err)
	}
	page, err := ParseStatsPage(statsDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stats tab for %s: %w", gameID, err)
	}
	log.WithFields(logrus.Fields{
		"home_layout": page.Home.Layout.String(),
		"away_layout": page.Away.Layout.String(),
	}).Debug("stats tables found")

	in := BuildInput(gameID, info, page)
	i.harvestNames(ctx, log, in.Home.Lines)
	i.harvestNames(ctx, log, in.Away.Lines)

	game, err := i.assembler.Assemble(in)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s: %w", gameID, err)
	}

	warnFallbacks(log, game)
	log.WithFields(logrus.Fields{
		"home":    game.Home.Identity.FullName,
		"away":    game.Away.Identity.FullName,
		"players": len(game.Home.Players) + len(game.Away.Players),
	}).Info("game assembled")
	return game, nil
}

// harvestNames fills NameLatin from player detail pages. A failed lookup is
// logged and the native name is kept.
func (i *Ingester) harvestNames(ctx context.Context, log *logrus.Entry, lines []store.RawPlayerLine) {
	for idx := range lines {
		line := &lines[idx]
		if line.DidNotPlay || line.DetailURL == "" || line.NameLatin != "" {
			continue
		}
		if !line.Starter && !i.allPlayers {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		doc, err := i.fetcher.FetchPlayerPage(ctx, line.DetailURL)
		if err != nil {
			log.WithError(err).WithField("player", line.NameNative).Warn("player page unavailable")
			continue
		}
		latin := names.ExtractLatinNameFromHTML(doc)
		if latin == "" {
			log.WithField("player", line.NameNative).Warn("no latinized name on player page")
			continue
		}
		line.NameLatin = latin
	}
}

func warnFallbacks(log *logrus.Entry, game *store.GameBoxscore) {
	for _, side := range []store.TeamBox{game.Home, game.Away} {
		if side.Identity.Fallback {
			log.WithField("team", side.NameRaw).Warn("team not in alias table")
		}
	}
	if game.Venue.Fallback {
		log.WithField("venue", game.Venue.Raw).Warn("venue not in alias table")
	}
}
