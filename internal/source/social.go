package source

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/satark-labs/scamintel/internal/config"
	"github.com/satark-labs/scamintel/internal/model"
	"github.com/satark-labs/scamintel/internal/normalize"
)

var tweetRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*tweet-content[^"]*"[^>]*>(.*?)</div>`)

// socialKeywords keep a post even when it carries no phone number.
var socialKeywords = []string{"scam", "fraud", "fake"}

// SocialFetcher searches a public social-media frontend for scam reports.
// The frontend is served by a rotating set of mirrors of varying health;
// the fetcher walks the mirror list in order and stops at the first one
// that responds.
type SocialFetcher struct {
	cfg    config.SocialConfig
	client *client
	now    func() time.Time
}

// NewSocial creates the social-search fetcher.
func NewSocial(cfg config.SocialConfig, userAgent string) *SocialFetcher {
	return &SocialFetcher{
		cfg:    cfg,
		client: newClient(time.Duration(cfg.TimeoutSecs)*time.Second, userAgent),
		now:    time.Now,
	}
}

func (f *SocialFetcher) Name() string         { return "social" }
func (f *SocialFetcher) Source() model.Source { return model.SourceSocial }

// Fetch tries each mirror in order and parses posts from the first success.
func (f *SocialFetcher) Fetch(ctx context.Context) ([]model.RawReport, error) {
	var lastErr error

	for _, mirror := range f.cfg.Mirrors {
		searchURL := fmt.Sprintf("%s/search?f=tweets&q=%s", mirror, f.cfg.Query)

		body, err := f.client.get(ctx, searchURL)
		if err != nil {
			lastErr = err
			zap.L().Debug("social: mirror failed",
				zap.String("mirror", mirror),
				zap.Error(err),
			)
			continue
		}

		return f.parsePosts(body), nil
	}

	if lastErr == nil {
		lastErr = eris.New("social: no mirrors configured")
	}
	return nil, lastErr
}

// parsePosts keeps posts that carry a phone number or a scam-indicative
// keyword; everything else on the search page is noise.
func (f *SocialFetcher) parsePosts(body string) []model.RawReport {
	posts := tweetRe.FindAllStringSubmatch(body, f.cfg.MaxItems)

	var out []model.RawReport
	for _, post := range posts {
		text := cleanText(post[1])
		if text == "" {
			continue
		}
		phones := normalize.ExtractPhones(text)
		if len(phones) == 0 && !containsAny(text, socialKeywords) {
			continue
		}
		out = append(out, model.RawReport{
			Title:       text,
			Source:      model.SourceSocial,
			PhonesFound: phones,
			Timestamp:   f.now(),
		})
	}
	return out
}
