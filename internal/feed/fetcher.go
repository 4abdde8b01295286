package feed

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// maxLogSize caps how much of the beacon log we read. The log is a small
// append-only CSV; anything near this size means a misconfigured URL.
const maxLogSize = 4 << 20

// Fetcher retrieves the raw beacon log over HTTP. A transport error or a
// non-2xx response is a fetch failure for the whole cycle; the body is never
// partially consumed into events.
type Fetcher struct {
	url    string
	client *http.Client
}

func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch returns the raw log body.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build beacon log request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch beacon log")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("unexpected status %s fetching beacon log", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLogSize))
	if err != nil {
		return "", errors.Wrap(err, "failed to read beacon log body")
	}

	return string(body), nil
}

// URL returns the configured source URL.
func (f *Fetcher) URL() string {
	return f.url
}
