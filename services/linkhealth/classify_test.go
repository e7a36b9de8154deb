package linkhealth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinehound/models"
)

func TestClassifyInvalidURL(t *testing.T) {
	h := Classify("not-a-url", Outcome{})
	if h.Status != models.HealthInvalid {
		t.Errorf("status = %s, want invalid", h.Status)
	}
}

func TestClassifyShortlinkLockedVsUnlocked(t *testing.T) {
	lockedURL := "https://shortlinkto.onl/abc123"

	tests := []struct {
		name   string
		body   string
		status models.HealthStatus
		locked bool
	}{
		{
			name:   "locked page with unlock button",
			body:   `<html><body><button>Click To Unlock Download Links</button></body></html>`,
			status: models.HealthLocked,
			locked: true,
		},
		{
			name:   "unlocked page with hosts visible",
			body:   `<html><body>Links Unlocked Now. <a href="https://mega.nz/f/x">Mega.nz</a></body></html>`,
			status: models.HealthUnlocked,
		},
		{
			name:   "dead page",
			body:   `<html><body><h1>This link has expired</h1></body></html>`,
			status: models.HealthDead,
		},
		{
			name:   "unrecognized but alive",
			body:   `<html><body>some ad page</body></html>`,
			status: models.HealthShortlinkActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Classify(lockedURL, Outcome{
				StatusCode: http.StatusOK,
				FinalURL:   lockedURL,
				Body:       tt.body,
			})
			if h.Status != tt.status {
				t.Errorf("status = %s, want %s", h.Status, tt.status)
			}
			if h.IsLocked != tt.locked {
				t.Errorf("isLocked = %v, want %v", h.IsLocked, tt.locked)
			}
			if tt.locked && h.UnlockURL != lockedURL {
				t.Errorf("unlockURL = %q, want the original URL", h.UnlockURL)
			}
		})
	}
}

func TestClassifyShortlinkRedirectToDirectDownload(t *testing.T) {
	h := Classify("https://bit.ly/xyz", Outcome{
		StatusCode: http.StatusOK,
		FinalURL:   "https://mega.nz/file/abcdef",
		Body:       "irrelevant",
	})
	if h.Status != models.HealthUnlockedRedirect {
		t.Errorf("status = %s, want unlocked_redirect", h.Status)
	}
}

func TestClassifyShortlinkDeadBeatsLocked(t *testing.T) {
	// A 404 page that still renders an unlock widget is dead, not locked.
	h := Classify("https://shortlinkto.biz/gone", Outcome{
		StatusCode: http.StatusNotFound,
		Body:       "click here to unlock",
	})
	if h.Status != models.HealthDead {
		t.Errorf("status = %s, want dead", h.Status)
	}
}

func TestClassifyStreaming(t *testing.T) {
	tests := []struct {
		name   string
		out    Outcome
		status models.HealthStatus
	}{
		{"player page", Outcome{StatusCode: 200, Body: `<div id="jwplayer"></div>`}, models.HealthHealthy},
		{"expired stream", Outcome{StatusCode: 200, Body: "file not found or deleted"}, models.HealthError},
		{"no indicators", Outcome{StatusCode: 200, Body: "<html></html>"}, models.HealthUnknown},
		{"http error", Outcome{StatusCode: 503}, models.HealthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Classify("https://streamtape.com/v/abc", tt.out)
			if h.Status != tt.status {
				t.Errorf("status = %s, want %s", h.Status, tt.status)
			}
			if !h.IsStreaming {
				t.Error("expected isStreaming")
			}
		})
	}
}

func TestClassifyRegular(t *testing.T) {
	tests := []struct {
		name   string
		out    Outcome
		status models.HealthStatus
	}{
		{"big file", Outcome{StatusCode: 200, ContentType: "application/octet-stream", ContentLength: 700_000_000}, models.HealthHealthy},
		{"video content type", Outcome{StatusCode: 200, ContentType: "video/x-matroska", ContentLength: 100}, models.HealthHealthy},
		{"html page", Outcome{StatusCode: 200, ContentType: "text/html", ContentLength: 5000}, models.HealthWarning},
		{"redirect", Outcome{StatusCode: 302}, models.HealthRedirect},
		{"forbidden", Outcome{StatusCode: 403}, models.HealthForbidden},
		{"not found", Outcome{StatusCode: 404}, models.HealthNotFound},
		{"server error", Outcome{StatusCode: 502}, models.HealthServerError},
		{"teapot", Outcome{StatusCode: 418}, models.HealthUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Classify("https://files.example/movie.mkv", tt.out)
			if h.Status != tt.status {
				t.Errorf("status = %s, want %s", h.Status, tt.status)
			}
		})
	}
}

func TestClassifyTransportFailures(t *testing.T) {
	if h := Classify("https://files.example/x", Outcome{TimedOut: true}); h.Status != models.HealthTimeout {
		t.Errorf("timeout status = %s", h.Status)
	}
	if h := Classify("https://files.example/x", Outcome{TransportErr: errors.New("refused")}); h.Status != models.HealthConnectionError {
		t.Errorf("connection error status = %s", h.Status)
	}
	if h := Classify("https://bit.ly/x", Outcome{TransportErr: errors.New("refused")}); h.Status != models.HealthShortlinkError {
		t.Errorf("shortlink transport error status = %s", h.Status)
	}
}

func TestCheckerAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Length", "2000000")
			w.WriteHeader(http.StatusOK)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>listing</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewChecker(srv.Client(), 5*time.Second)

	if h := c.Check(context.Background(), srv.URL+"/file"); h.Status != models.HealthHealthy {
		t.Errorf("file status = %s, want healthy", h.Status)
	}
	if h := c.Check(context.Background(), srv.URL+"/page"); h.Status != models.HealthWarning {
		t.Errorf("page status = %s, want warning", h.Status)
	}
	if h := c.Check(context.Background(), srv.URL+"/missing"); h.Status != models.HealthNotFound {
		t.Errorf("missing status = %s, want not_found", h.Status)
	}
}

func TestCheckManyPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewChecker(srv.Client(), 5*time.Second)
	urls := []string{"bogus", srv.URL + "/a", srv.URL + "/b"}
	results := c.CheckMany(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Status != models.HealthInvalid {
		t.Errorf("results[0] = %s, want invalid", results[0].Status)
	}
	if results[1].Status != models.HealthNotFound || results[2].Status != models.HealthNotFound {
		t.Errorf("expected not_found for live URLs, got %s / %s", results[1].Status, results[2].Status)
	}
}
