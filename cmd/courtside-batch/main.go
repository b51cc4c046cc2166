package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/aliases"
	"github.com/fortuna/courtside/internal/batch"
	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/identity"
	"github.com/fortuna/courtside/internal/ingest/bleague"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/rank"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

const (
	appName    = "courtside-batch"
	appVersion = "1.0.0"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to config file")
		league       = flag.String("league", store.LeagueBLeague, "League to ingest (bleague or nba)")
		games        = flag.String("games", "", "Comma-separated game IDs")
		outDir       = flag.String("out", "", "Directory for boxscore JSON (default: batch.output_dir)")
		aliasesPath  = flag.String("aliases", "", "Alias table (default: ingest.aliases_path)")
		dryRun       = flag.Bool("dry-run", false, "Assemble games without writing anything")
		allPlayers   = flag.Bool("all-players", false, "Look up latin names for every player, not only starters")
		persist      = flag.Bool("store", false, "Upsert games and record the job in Postgres")
		publish      = flag.Bool("publish", false, "Cache games and publish them to the Redis streams")
		rankCategory = flag.String("rank", "", "Write top-10 rankings under this category label (e.g. B1)")
		season       = flag.Bool("season", false, "With -rank, also write the team season report for the batch's games")
		date         = flag.String("date", "", "NBA: ingest every game on this day (YYYY-MM-DD)")
		from         = flag.String("from", "", "NBA: first day of a date range (YYYY-MM-DD)")
		to           = flag.String("to", "", "NBA: last day of a date range (YYYY-MM-DD, default -from)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	log := logging.Component(logger, "main")
	log.Infof("=== %s v%s ===", appName, appVersion)

	if *aliasesPath == "" {
		*aliasesPath = cfg.Ingest.AliasesPath
	}
	if *outDir == "" {
		*outDir = cfg.Batch.OutputDir
	}

	table, err := aliases.Load(*aliasesPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load alias table")
	}
	assembler := boxscore.NewAssembler(identity.NewResolver(table), names.NewNormalizer(table))

	var (
		ingester  batch.Ingester
		nbaClient *nba.Client
	)
	switch strings.ToLower(*league) {
	case store.LeagueBLeague:
		browser := bleague.NewClient(logger, cfg.Ingest.BrowserTimeout)
		defer browser.Close()
		ingester = bleague.NewIngester(browser, assembler, logger, *allPlayers || cfg.Ingest.AllPlayers)
	case store.LeagueNBA:
		nbaClient = nba.NewClient(logger, cfg.Ingest.NBAFeedURL).WithScoreboardURL(cfg.Ingest.NBAScoreboardURL)
		ingester = nba.NewIngester(nbaClient, assembler, logger)
	default:
		log.Fatalf("unsupported league %q", *league)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := splitIDs(*games)
	if *date != "" || *from != "" || *to != "" {
		if nbaClient == nil {
			log.Fatal("-date/-from/-to need -league nba")
		}
		days, err := gameDays(*date, *from, *to)
		if err != nil {
			log.WithError(err).Fatal("invalid date range")
		}
		ids = mergeIDs(ids, discoverGameIDs(ctx, nbaClient, days, time.Second, log))
	}
	if len(ids) == 0 {
		log.Fatal("specify -games or -date/-from/-to")
	}

	sinks := batch.Sinks{Files: batch.NewFileSink(*outDir)}
	if *persist && !*dryRun {
		db, err := store.NewDatabase(cfg.Database.DSN, store.PoolConfig{}, logger)
		if err != nil {
			log.WithError(err).Fatal("connect database")
		}
		defer db.Close()
		if err := db.RunMigrations(context.Background()); err != nil {
			log.WithError(err).Fatal("run migrations")
		}
		sinks.Store = repository.NewBoxscoreRepository(db)
		sinks.Jobs = repository.NewBatchJobRepository(db)
	}
	if *publish && !*dryRun {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.CacheTTL)
		if err != nil {
			log.WithError(err).Fatal("connect redis")
		}
		defer redisCache.Close()
		sinks.Cache = redisCache
		sinks.Publisher = publisher.NewRedisPublisherFromClient(redisCache.Client(), cfg.Redis.StreamMaxLen).WithSource(appName)
	}

	runner := batch.NewRunner(logger, sinks, ingester)
	res, err := runner.Run(ctx, batch.Spec{League: ingester.League(), GameIDs: ids, DryRun: *dryRun}, &consoleReporter{log: log})
	if err != nil {
		log.WithError(err).Fatal("batch failed")
	}

	if *rankCategory != "" && len(res.Games) > 0 {
		date := strings.ReplaceAll(res.Games[0].Date, ".", "")
		ranking := rank.Build(*rankCategory, date, res.Games)
		if *dryRun {
			log.WithField("entries", len(ranking.Points)).Info("dry run: ranking not written")
		} else if path, err := rank.Write(cfg.Batch.RankingDir, ranking); err != nil {
			log.WithError(err).Error("failed to write ranking")
		} else {
			log.WithField("path", path).Info("✓ ranking written")
		}

		if *season {
			report := rank.BuildSeason(*rankCategory, res.Games)
			if *dryRun {
				log.WithField("teams", len(report.Teams)).Info("dry run: season report not written")
			} else if path, err := rank.WriteSeason(cfg.Batch.RankingDir, report); err != nil {
				log.WithError(err).Error("failed to write season report")
			} else {
				log.WithFields(logrus.Fields{"path": path, "teams": len(report.Teams)}).Info("✓ season report written")
			}
		}
	}

	if res.Job.Status == store.JobFailed {
		os.Exit(1)
	}
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

type consoleReporter struct {
	log *logrus.Entry
}

func (c *consoleReporter) OnJobStart(job *store.BatchJob) {
	c.log.WithFields(logrus.Fields{"job_id": job.JobID, "games": job.GamesTotal}).Infof("starting %s batch", job.League)
}

func (c *consoleReporter) OnGameProcessed(gameID string, game *store.GameBoxscore) {
	home, away := game.Score()
	c.log.Infof("✓ %s  %s %d - %d %s", gameID, game.Home.Identity.FullName, home, away, game.Away.Identity.FullName)
}

func (c *consoleReporter) OnGameFailed(gameID string, err error) {
	c.log.WithError(err).Warnf("✗ %s", gameID)
}

func (c *consoleReporter) OnProgress(message string, current int, total int) {
	c.log.Debugf("%s (%d/%d)", message, current, total)
}

func (c *consoleReporter) OnJobComplete(job *store.BatchJob) {
	entry := c.log.WithFields(logrus.Fields{"done": job.GamesDone, "failed": job.GamesFailed})
	if len(job.FailedGameIDs) > 0 {
		entry = entry.WithField("failed_ids", strings.Join(job.FailedGameIDs, ","))
	}
	entry.Infof("job %s", job.Status)
}

func (c *consoleReporter) OnJobError(err error) {
	c.log.WithError(err).Error("job error")
}
