package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satark-labs/scamintel/internal/config"
	"github.com/satark-labs/scamintel/internal/model"
)

var (
	rssTitleRe = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	rssLinkRe  = regexp.MustCompile(`(?s)<link>(.*?)</link>`)
)

// NewsFetcher issues canned scam-related queries against a syndicated news
// search feed. The feed body is scanned with lightweight regexes rather
// than a full RSS parser; the format drifts and partial extraction is fine.
type NewsFetcher struct {
	cfg    config.NewsConfig
	client *client
	now    func() time.Time
}

// NewNews creates the news fetcher.
func NewNews(cfg config.NewsConfig, userAgent string) *NewsFetcher {
	return &NewsFetcher{
		cfg:    cfg,
		client: newClient(time.Duration(cfg.TimeoutSecs)*time.Second, userAgent),
		now:    time.Now,
	}
}

func (f *NewsFetcher) Name() string         { return "news" }
func (f *NewsFetcher) Source() model.Source { return model.SourceNews }

// Fetch runs every configured query and returns up to MaxItems reports.
// Individual query failures are skipped; an error is returned only when
// no query produced anything and at least one failed.
func (f *NewsFetcher) Fetch(ctx context.Context) ([]model.RawReport, error) {
	var (
		items   []model.RawReport
		lastErr error
	)

	for _, query := range f.cfg.Queries {
		feedURL := fmt.Sprintf("%s?q=%s+when:1d&hl=en-IN&gl=IN&ceid=IN:en", f.cfg.BaseURL, query)

		body, err := f.client.get(ctx, feedURL)
		if err != nil {
			lastErr = err
			zap.L().Debug("news: query failed",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		items = append(items, f.parseFeed(body)...)
		if len(items) >= f.cfg.MaxItems {
			break
		}
	}

	if len(items) > f.cfg.MaxItems {
		items = items[:f.cfg.MaxItems]
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

// parseFeed pairs article titles with links positionally. The first <title>
// is the channel title, not an article, and the first <link> is the channel
// link, so both are skipped and titles[i] pairs with links[i] one-based.
func (f *NewsFetcher) parseFeed(body string) []model.RawReport {
	titles := rssTitleRe.FindAllStringSubmatch(body, -1)
	links := rssLinkRe.FindAllStringSubmatch(body, -1)

	var out []model.RawReport
	for i := 1; i < len(titles) && i <= 5; i++ {
		if i >= len(links) {
			break
		}
		title := cleanText(titles[i][1])
		if title == "" {
			continue
		}
		out = append(out, model.RawReport{
			Title:     title,
			Link:      strings.TrimSpace(links[i][1]),
			Source:    model.SourceNews,
			Timestamp: f.now(),
		})
	}
	return out
}
