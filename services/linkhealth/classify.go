package linkhealth

import (
	"fmt"
	"net/http"
	"strings"

	"cinehound/models"
)

// Known streaming hosts. Their pages embed a player rather than a file, so
// health is judged from page content instead of headers.
var streamingServices = []string{
	"streamlare", "vcdnlare", "slmaxed", "sltube", "streamlare.com",
	"netutv", "uperbox", "streamtape", "droplare", "streamwish",
	"filelions", "mixdrop", "doodstream", "upstream",
}

// Known ad-monetized shortlink/unlock services. These sit between the listing
// page and the real download and have a locked/unlocked page state.
var shortlinkServices = []string{
	"shortlinkto.onl", "shortlinkto.biz", "uptobhai.blog",
	"shortlink.to", "short.link", "unlock.link", "linkvertise.com",
	"adf.ly", "bit.ly", "tinyurl.com", "ow.ly", "goo.gl",
}

var streamingPlayerPhrases = []string{
	"video", "player", "stream", "play", "media",
	"jwplayer", "videojs", "plyr", "hls", "m3u8",
}

var streamingErrorPhrases = []string{
	"file not found", "video not found", "expired",
	"deleted", "removed", "unavailable", "error 404",
	"access denied", "forbidden",
}

var lockedPhrases = []string{
	"click to unlock download links", "click to unlock download link",
	"unlock download links", "click here to unlock",
	"verify you are human", "complete captcha", "human verification",
	"get link", "get links", "continue to link", "continue to links",
	"please wait", "loading...", "generating link", "generating links",
	"unlock now", "unlock link", "unlock links",
}

var unlockedPhrases = []string{
	"links unlocked now", "links unlocked now.",
	"google drive", "mega.nz", "mediafire", "dropbox", "onedrive",
	"download link:", "download links:", "direct download",
	"file download", "download now", "get download",
}

var deadPagePhrases = []string{
	"page not found", "404 not found", "file not found",
	"link expired", "link not found", "invalid link", "broken link",
	"access denied", "forbidden", "this link has expired",
	"link has been removed", "file has been deleted",
}

// Direct-download URL fragments: a shortlink redirecting onto one of these has
// already been unlocked.
var directDownloadFragments = []string{
	"drive.google.com/file", "mega.nz", "mediafire.com/file",
	"dropbox.com", "onedrive.live.com",
	".zip", ".rar", ".mp4", ".mkv", ".avi",
}

// Outcome captures everything the classifier needs from a fetch attempt.
// TimedOut and TransportErr cover failures that produced no response.
type Outcome struct {
	StatusCode     int
	FinalURL       string
	Body           string
	ContentType    string
	ContentLength  int64
	ResponseTimeMS float64
	TimedOut       bool
	TransportErr   error
}

// IsStreamingURL reports whether the URL belongs to a known streaming host.
func IsStreamingURL(url string) bool {
	return matchesAny(strings.ToLower(url), streamingServices)
}

// IsShortlinkURL reports whether the URL belongs to a known shortlink service.
func IsShortlinkURL(url string) bool {
	return matchesAny(strings.ToLower(url), shortlinkServices)
}

// Classify maps a fetch outcome to a health bucket. It is a pure function of
// the URL and outcome so canned responses classify deterministically.
func Classify(url string, out Outcome) models.LinkHealth {
	if !strings.HasPrefix(url, "http") {
		return models.LinkHealth{
			Status:  models.HealthInvalid,
			Color:   "red",
			Message: "Invalid URL",
		}
	}

	if out.TimedOut {
		return models.LinkHealth{
			Status:  models.HealthTimeout,
			Color:   "red",
			Message: "Timeout",
		}
	}
	if out.TransportErr != nil {
		if IsShortlinkURL(url) {
			return models.LinkHealth{
				Status:  models.HealthShortlinkError,
				Color:   "red",
				Message: "Shortlink Check Failed",
			}
		}
		return models.LinkHealth{
			Status:  models.HealthConnectionError,
			Color:   "red",
			Message: "Connection Failed",
		}
	}

	switch {
	case IsStreamingURL(url):
		return classifyStreaming(out)
	case IsShortlinkURL(url):
		return classifyShortlink(url, out)
	default:
		return classifyRegular(out)
	}
}

func classifyStreaming(out Outcome) models.LinkHealth {
	if out.StatusCode != http.StatusOK {
		return models.LinkHealth{
			Status:         models.HealthUnhealthy,
			Color:          "red",
			Message:        fmt.Sprintf("Stream not accessible (HTTP %d)", out.StatusCode),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			IsStreaming:    true,
		}
	}

	body := strings.ToLower(out.Body)
	switch {
	case matchesAny(body, streamingErrorPhrases):
		return models.LinkHealth{
			Status:         models.HealthError,
			Color:          "red",
			Message:        "Stream unavailable or expired",
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			IsStreaming:    true,
		}
	case matchesAny(body, streamingPlayerPhrases):
		return models.LinkHealth{
			Status:         models.HealthHealthy,
			Color:          "green",
			Message:        "Stream is accessible and ready to play",
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			IsStreaming:    true,
		}
	default:
		return models.LinkHealth{
			Status:         models.HealthUnknown,
			Color:          "yellow",
			Message:        "Stream status unclear",
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			IsStreaming:    true,
		}
	}
}

func classifyShortlink(url string, out Outcome) models.LinkHealth {
	if out.StatusCode != http.StatusOK &&
		out.StatusCode != http.StatusNotFound &&
		out.StatusCode != http.StatusForbidden &&
		out.StatusCode != http.StatusGone {
		return models.LinkHealth{
			Status:         models.HealthShortlinkError,
			Color:          "red",
			Message:        fmt.Sprintf("Shortlink Error (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	}

	body := strings.ToLower(out.Body)
	finalURL := strings.ToLower(out.FinalURL)

	// Precedence: dead page, then redirect-to-download, then locked, then
	// unlocked, then "active but unclear". Locked wins over unlocked because
	// unlock-button pages often tease the host names behind the wall.
	deadStatus := out.StatusCode == http.StatusNotFound ||
		out.StatusCode == http.StatusForbidden ||
		out.StatusCode == http.StatusGone

	switch {
	case deadStatus || matchesAny(body, deadPagePhrases):
		return models.LinkHealth{
			Status:         models.HealthDead,
			Color:          "red",
			Message:        fmt.Sprintf("Dead Link - File Not Found (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			FinalURL:       out.FinalURL,
		}
	case matchesAny(finalURL, directDownloadFragments):
		return models.LinkHealth{
			Status:         models.HealthUnlockedRedirect,
			Color:          "green",
			Message:        fmt.Sprintf("Unlocked - Direct Link (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			FinalURL:       out.FinalURL,
		}
	case matchesAny(body, lockedPhrases):
		return models.LinkHealth{
			Status:         models.HealthLocked,
			Color:          "yellow",
			Message:        fmt.Sprintf("Locked - Click to Unlock (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
			IsLocked:       true,
			UnlockURL:      url,
		}
	case matchesAny(body, unlockedPhrases):
		return models.LinkHealth{
			Status:         models.HealthUnlocked,
			Color:          "green",
			Message:        fmt.Sprintf("Unlocked - Download Links Available (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	default:
		return models.LinkHealth{
			Status:         models.HealthShortlinkActive,
			Color:          "orange",
			Message:        fmt.Sprintf("Shortlink Active (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   out.StatusCode,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	}
}

func classifyRegular(out Outcome) models.LinkHealth {
	code := out.StatusCode

	switch {
	case code == http.StatusOK:
		contentType := strings.ToLower(out.ContentType)
		isFile := strings.Contains(contentType, "video/") ||
			strings.Contains(contentType, "application/octet-stream") ||
			strings.Contains(contentType, "application/zip") ||
			out.ContentLength > 1_000_000
		if isFile {
			h := models.LinkHealth{
				Status:         models.HealthHealthy,
				Color:          "green",
				Message:        fmt.Sprintf("Active (%.0fms)", out.ResponseTimeMS),
				ResponseCode:   code,
				ResponseTimeMS: out.ResponseTimeMS,
				ContentType:    out.ContentType,
			}
			if out.ContentLength > 0 {
				h.FileSize = fmt.Sprintf("%d", out.ContentLength)
			}
			return h
		}
		return models.LinkHealth{
			Status:         models.HealthWarning,
			Color:          "orange",
			Message:        fmt.Sprintf("Redirect/Page (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   code,
			ResponseTimeMS: out.ResponseTimeMS,
			ContentType:    out.ContentType,
		}
	case code >= 300 && code < 400:
		return models.LinkHealth{
			Status:         models.HealthRedirect,
			Color:          "orange",
			Message:        fmt.Sprintf("Redirect (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   code,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	case code == http.StatusForbidden:
		return models.LinkHealth{
			Status:         models.HealthForbidden,
			Color:          "red",
			Message:        fmt.Sprintf("Access Denied (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   code,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	case code == http.StatusNotFound:
		return models.LinkHealth{
			Status:         models.HealthNotFound,
			Color:          "red",
			Message:        fmt.Sprintf("Not Found (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   code,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	case code >= 500:
		return models.LinkHealth{
			Status:         models.HealthServerError,
			Color:          "red",
			Message:        fmt.Sprintf("Server Error (%.0fms)", out.ResponseTimeMS),
			ResponseCode:   code,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	default:
		return models.LinkHealth{
			Status:         models.HealthUnknown,
			Color:          "orange",
			Message:        fmt.Sprintf("Status %d (%.0fms)", code, out.ResponseTimeMS),
			ResponseCode:   code,
			ResponseTimeMS: out.ResponseTimeMS,
		}
	}
}

func matchesAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
