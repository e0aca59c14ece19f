package source

import (
	"context"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/satark-labs/scamintel/internal/config"
	"github.com/satark-labs/scamintel/internal/model"
)

// fragmentRe matches short text-bearing elements on advisory pages. Nested
// markup makes exact extraction impossible; fragments are best-effort.
var fragmentRe = regexp.MustCompile(`(?is)<(?:p|li|td)\b[^>]*>(.*?)</(?:p|li|td)>`)

// advisoryKeywords filter advisory fragments down to fraud-related ones.
var advisoryKeywords = []string{"scam", "fraud", "cyber", "phishing"}

const advisoryMaxFragments = 20

// AdvisoryFetcher scans government and regulator advisory pages for
// fraud-related text fragments. Only the first configured source is fetched
// per pass, with a longer fixed delay out of deference to government
// infrastructure.
type AdvisoryFetcher struct {
	cfg     config.AdvisoryConfig
	client  *client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewAdvisory creates the government-advisory fetcher.
func NewAdvisory(cfg config.AdvisoryConfig, userAgent string) *AdvisoryFetcher {
	delay := time.Duration(cfg.DelaySecs) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &AdvisoryFetcher{
		cfg:     cfg,
		client:  newClient(time.Duration(cfg.TimeoutSecs)*time.Second, userAgent),
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		now:     time.Now,
	}
}

func (f *AdvisoryFetcher) Name() string         { return "advisory" }
func (f *AdvisoryFetcher) Source() model.Source { return model.SourceAdvisory }

// Fetch scans advisory pages and keeps fragments mentioning fraud keywords.
func (f *AdvisoryFetcher) Fetch(ctx context.Context) ([]model.RawReport, error) {
	urls := f.cfg.URLs
	if len(urls) > 1 {
		urls = urls[:1]
	}

	var (
		items   []model.RawReport
		lastErr error
	)

	for _, pageURL := range urls {
		if err := f.limiter.Wait(ctx); err != nil {
			return items, eris.Wrap(err, "advisory: limiter wait")
		}

		body, err := f.client.get(ctx, pageURL)
		if err != nil {
			lastErr = err
			zap.L().Debug("advisory: page fetch failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}

		items = append(items, f.parsePage(body, pageURL)...)
	}

	if len(items) > f.cfg.MaxItems {
		items = items[:f.cfg.MaxItems]
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (f *AdvisoryFetcher) parsePage(body, pageURL string) []model.RawReport {
	fragments := fragmentRe.FindAllStringSubmatch(body, advisoryMaxFragments)

	var out []model.RawReport
	for _, frag := range fragments {
		text := cleanText(frag[1])
		if text == "" || !containsAny(text, advisoryKeywords) {
			continue
		}
		out = append(out, model.RawReport{
			Title:     text,
			Source:    model.SourceAdvisory,
			Link:      pageURL,
			Timestamp: f.now(),
		})
	}
	return out
}
