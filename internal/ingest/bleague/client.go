package bleague

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/logging"
)

const (
	// SiteURL is the league site root used to resolve relative player links.
	SiteURL = "https://www.bleague.jp"

	// GameURL takes a schedule key and a tab number.
	GameURL = SiteURL + "/game_detail/?ScheduleKey=%s&tab=%d"

	// UserAgent for page loads
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// MinRequestInterval between page loads
	MinRequestInterval = 2 * time.Second
)

// Game page tabs.
const (
	TabSummary = 1
	TabStats   = 4
)

// Client loads league pages in a headless browser.
type Client struct {
	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
	timeout     time.Duration
	settle      time.Duration

	allocCtx context.Context
	cancel   context.CancelFunc
	log      *logrus.Entry
}

// NewClient starts a headless browser allocator.
func NewClient(logger *logrus.Logger, timeout time.Duration) *Client {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(1280, 800),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		interval: MinRequestInterval,
		timeout:  timeout,
		settle:   3 * time.Second,
		allocCtx: allocCtx,
		cancel:   cancel,
		log:      logging.Component(logger, "bleague-client"),
	}
}

// Close releases the browser.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FetchGamePage loads one tab of a game page.
func (c *Client) FetchGamePage(ctx context.Context, gameID string, tab int) (*goquery.Document, error) {
	ready := `table`
	if tab == TabSummary {
		ready = `.stadium-name`
	}
	return c.fetch(ctx, fmt.Sprintf(GameURL, url.QueryEscape(gameID), tab), ready)
}

// FetchPlayerPage loads a player detail page. Links to the English site are
// rewritten to the Japanese one, which carries the latinized header.
func (c *Client) FetchPlayerPage(ctx context.Context, link string) (*goquery.Document, error) {
	target, err := PlayerPageURL(link)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, target, `body`)
}

// PlayerPageURL resolves a detail link against the site root and drops the
// "/en/" path segment.
func PlayerPageURL(link string) (string, error) {
	base, _ := url.Parse(SiteURL)
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("invalid player link %q: %w", link, err)
	}
	resolved := base.ResolveReference(ref).String()
	return strings.Replace(resolved, "/en/", "/", 1), nil
}

func (c *Client) wait() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
			wait := c.interval - elapsed
			c.log.WithField("wait", wait).Debug("rate limiting")
			time.Sleep(wait)
		}
	}
	c.lastRequest = time.Now()
}

func (c *Client) fetch(ctx context.Context, target, readySelector string) (*goquery.Document, error) {
	c.wait()

	browserCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, c.timeout)
	defer cancel()

	// Stop the browser tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady(readySelector, chromedp.ByQuery),
		chromedp.Sleep(c.settle),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp error loading %s: %w", target, err)
	}
	if html == "" {
		return nil, fmt.Errorf("empty HTML content returned for %s", target)
	}

	c.log.WithField("url", target).Debug("page loaded")
	return ParseHTML(html)
}

// ParseHTML converts raw HTML to a goquery Document.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
