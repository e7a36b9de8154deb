package agents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches and parses pages for the site agents. Transport failures are
// retried with backoff; HTTP error statuses are not, the mirrors return those
// deliberately.
type Client struct {
	http *http.Client
}

// NewClient builds a fetch client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Document fetches a URL and parses it into a goquery document.
func (c *Client) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, _, err := c.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// Get performs a GET with browser headers, retrying transport errors up to
// three times. Returns the body, the final URL after redirects, and an error
// for non-2xx statuses.
func (c *Client) Get(ctx context.Context, pageURL string) (io.ReadCloser, string, error) {
	var (
		body     io.ReadCloser
		finalURL string
	)

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", browserUA)
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			resp, err := c.http.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(ctx.Err())
				}
				return err
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				resp.Body.Close()
				return retry.Unrecoverable(fmt.Errorf("GET %s: status %d", pageURL, resp.StatusCode))
			}

			body = resp.Body
			finalURL = resp.Request.URL.String()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, "", err
	}
	return body, finalURL, nil
}
