package linkhealth

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinehound/models"
)

const (
	defaultCheckTimeout = 10 * time.Second
	maxBodyBytes        = 512 * 1024
	maxConcurrentChecks = 8
)

// Checker fetches candidate links and classifies the responses.
type Checker struct {
	client  *http.Client
	timeout time.Duration
}

// NewChecker builds a checker with the given per-link timeout. A nil client
// gets a fresh one; checks share it for connection reuse.
func NewChecker(client *http.Client, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Checker{client: client, timeout: timeout}
}

// Check fetches the URL and returns its health classification. Streaming and
// shortlink URLs need the page body; regular links try HEAD first and fall
// back to GET when the host rejects it.
func (c *Checker) Check(ctx context.Context, url string) models.LinkHealth {
	if !strings.HasPrefix(url, "http") {
		return Classify(url, Outcome{})
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out Outcome
	if IsStreamingURL(url) || IsShortlinkURL(url) {
		out = c.fetchBody(checkCtx, url)
	} else {
		out = c.fetchHead(checkCtx, url)
	}
	return Classify(url, out)
}

// CheckMany classifies a batch of links concurrently, preserving input order.
func (c *Checker) CheckMany(ctx context.Context, urls []string) []models.LinkHealth {
	results := make([]models.LinkHealth, len(urls))

	p := pool.New().WithMaxGoroutines(maxConcurrentChecks)
	for i, url := range urls {
		p.Go(func() {
			results[i] = c.Check(ctx, url)
		})
	}
	p.Wait()

	return results
}

func (c *Checker) fetchBody(ctx context.Context, url string) Outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{TransportErr: err}
	}
	setBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return transportOutcome(err, time.Since(start))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		log.Printf("[linkhealth] partial body read for %s: %v", url, readErr)
	}

	return Outcome{
		StatusCode:     resp.StatusCode,
		FinalURL:       resp.Request.URL.String(),
		Body:           string(body),
		ContentType:    resp.Header.Get("Content-Type"),
		ContentLength:  resp.ContentLength,
		ResponseTimeMS: msSince(start),
	}
}

func (c *Checker) fetchHead(ctx context.Context, url string) Outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Outcome{TransportErr: err}
	}
	setBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		err = errors.New("head not allowed")
	}
	if err != nil {
		// Some file hosts reject HEAD outright; retry as GET and discard the body.
		getReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return Outcome{TransportErr: reqErr}
		}
		setBrowserHeaders(getReq)
		resp, err = c.client.Do(getReq)
		if err != nil {
			return transportOutcome(err, time.Since(start))
		}
	}
	defer resp.Body.Close()

	return Outcome{
		StatusCode:     resp.StatusCode,
		FinalURL:       resp.Request.URL.String(),
		ContentType:    resp.Header.Get("Content-Type"),
		ContentLength:  resp.ContentLength,
		ResponseTimeMS: msSince(start),
	}
}

func transportOutcome(err error, elapsed time.Duration) Outcome {
	out := Outcome{ResponseTimeMS: float64(elapsed.Milliseconds())}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		out.TimedOut = true
		return out
	}
	if errors.Is(err, context.DeadlineExceeded) {
		out.TimedOut = true
		return out
	}

	out.TransportErr = err
	return out
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
