package source

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// maxBodyBytes bounds how much of an untrusted response body is read.
const maxBodyBytes = 2 << 20

// client is a thin HTTP GET helper shared by the fetchers. Each fetcher
// owns its own client so per-source timeouts stay independent.
type client struct {
	http      *http.Client
	userAgent string
}

func newClient(timeout time.Duration, userAgent string) *client {
	return &client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// get fetches rawURL and returns the body as text. Any network error or
// non-200 status is returned as an error; callers decide whether to skip
// the source or fall through to a mirror.
func (c *client) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "source: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "source: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("source: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrapf(err, "source: read body from %s", rawURL)
	}

	return string(body), nil
}
