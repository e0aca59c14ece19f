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
	"github.com/satark-labs/scamintel/internal/normalize"
)

var (
	complaintBlockRe = regexp.MustCompile(`(?is)<(?:div|article)[^>]*class="[^"]*(?:complaint|post)[^"]*"[^>]*>(.*?)</(?:div|article)>`)
	complaintHeadRe  = regexp.MustCompile(`(?is)<(?:h2|h3|a)\b[^>]*>(.*?)</(?:h2|h3|a)>`)
)

// ComplaintsFetcher scrapes public consumer-complaint listing pages for
// complaint titles and any phone numbers embedded in them. Only the first
// configured page is fetched per pass, and requests are throttled with a
// fixed delay so the forum is never hammered.
type ComplaintsFetcher struct {
	cfg     config.ComplaintsConfig
	client  *client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewComplaints creates the complaint-forum fetcher.
func NewComplaints(cfg config.ComplaintsConfig, userAgent string) *ComplaintsFetcher {
	delay := time.Duration(cfg.DelaySecs) * time.Second
	if delay <= 0 {
		delay = time.Second
	}
	return &ComplaintsFetcher{
		cfg:     cfg,
		client:  newClient(time.Duration(cfg.TimeoutSecs)*time.Second, userAgent),
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		now:     time.Now,
	}
}

func (f *ComplaintsFetcher) Name() string         { return "complaints" }
func (f *ComplaintsFetcher) Source() model.Source { return model.SourceComplaints }

// Fetch scans the listing page for elements that look like complaint posts.
func (f *ComplaintsFetcher) Fetch(ctx context.Context) ([]model.RawReport, error) {
	urls := f.cfg.URLs
	if len(urls) > 1 {
		// Limit to the first page to avoid tripping the forum's rate limits.
		urls = urls[:1]
	}

	var (
		items   []model.RawReport
		lastErr error
	)

	for _, pageURL := range urls {
		if err := f.limiter.Wait(ctx); err != nil {
			return items, eris.Wrap(err, "complaints: limiter wait")
		}

		body, err := f.client.get(ctx, pageURL)
		if err != nil {
			lastErr = err
			zap.L().Debug("complaints: page fetch failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			continue
		}

		items = append(items, f.parsePage(body)...)
	}

	if len(items) > f.cfg.MaxItems {
		items = items[:f.cfg.MaxItems]
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (f *ComplaintsFetcher) parsePage(body string) []model.RawReport {
	blocks := complaintBlockRe.FindAllStringSubmatch(body, f.cfg.MaxItems)

	var out []model.RawReport
	for _, block := range blocks {
		head := complaintHeadRe.FindStringSubmatch(block[1])
		if head == nil {
			continue
		}
		title := cleanText(head[1])
		if title == "" {
			continue
		}
		out = append(out, model.RawReport{
			Title:       title,
			Source:      model.SourceComplaints,
			PhonesFound: normalize.ExtractPhones(title),
			Timestamp:   f.now(),
		})
	}
	return out
}
