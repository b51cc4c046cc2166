package nba

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/logging"
)

// FeedURL takes a game ID such as "0022400061".
const FeedURL = "https://cdn.nba.com/static/json/liveData/boxscore/boxscore_%s.json"

// ScoreboardURL takes a game date as MM/DD/YYYY.
const ScoreboardURL = "https://stats.nba.com/stats/scoreboardv2?DayOffset=0&LeagueID=00&gameDate=%s"

// stats.nba.com drops requests that do not look like they come from nba.com.
var statsHeaders = []string{
	"Accept: application/json, text/plain, */*",
	"Accept-Language: en-US,en;q=0.9",
	"Referer: https://www.nba.com/",
	"Origin: https://www.nba.com",
	"x-nba-stats-origin: stats",
	"x-nba-stats-token: true",
	"User-Agent: Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

var gameIDPattern = regexp.MustCompile(`^\d{10}$`)

// Client fetches the boxscore feed.
// Note: uses curl because the CDN rejects Go's default TLS fingerprint.
type Client struct {
	feedURL       string
	scoreboardURL string
	timeout       int
	log           *logrus.Entry
}

// NewClient creates a client. An empty feedURL uses FeedURL; it must contain
// one %s verb for the game ID.
func NewClient(logger *logrus.Logger, feedURL string) *Client {
	if feedURL == "" {
		feedURL = FeedURL
	}
	return &Client{
		feedURL:       feedURL,
		scoreboardURL: ScoreboardURL,
		timeout:       15,
		log:           logging.Component(logger, "nba-client"),
	}
}

// WithScoreboardURL overrides ScoreboardURL. It must contain one %s verb for
// the date; an empty url keeps the default.
func (c *Client) WithScoreboardURL(url string) *Client {
	if url != "" {
		c.scoreboardURL = url
	}
	return c
}

// FetchBoxscore downloads and decodes one game's feed.
func (c *Client) FetchBoxscore(ctx context.Context, gameID string) (*Feed, error) {
	if !gameIDPattern.MatchString(gameID) {
		return nil, fmt.Errorf("invalid game id %q", gameID)
	}
	url := fmt.Sprintf(c.feedURL, gameID)

	output, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	feed, err := DecodeFeed(output)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}
	return feed, nil
}

// FetchGameIDs lists the game IDs scheduled on date (US Eastern calendar day).
func (c *Client) FetchGameIDs(ctx context.Context, date time.Time) ([]string, error) {
	url := fmt.Sprintf(c.scoreboardURL, date.Format("01/02/2006"))

	output, err := c.get(ctx, url, statsHeaders...)
	if err != nil {
		return nil, err
	}

	ids, err := DecodeScoreboard(output)
	if err != nil {
		return nil, fmt.Errorf("scoreboard %s: %w", date.Format(time.DateOnly), err)
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, url string, headers ...string) ([]byte, error) {
	args := []string{"-s", "-L", "--fail", "--compressed", "-m", strconv.Itoa(c.timeout)}
	for _, h := range headers {
		args = append(args, "-H", h)
	}
	args = append(args, url)

	cmd := exec.CommandContext(ctx, "curl", args...)
	c.log.WithField("url", url).Debug("fetching")

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("curl failed for %s: %w (stderr: %s)", url, err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("curl execution failed: %w", err)
	}
	return output, nil
}
