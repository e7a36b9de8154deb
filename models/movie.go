package models

// Movie is a single search hit from one source site.
type Movie struct {
	Title             string   `json:"title"`
	URL               string   `json:"url"`
	DetailURL         string   `json:"detail_url,omitempty"`
	Year              string   `json:"year,omitempty"`
	Quality           []string `json:"quality,omitempty"`
	Language          string   `json:"language,omitempty"`
	FileSize          string   `json:"file_size,omitempty"`
	Poster            string   `json:"poster,omitempty"`
	Source            string   `json:"source"`
	SourceColor       string   `json:"source_color,omitempty"`
	TelegramMessageID int64    `json:"telegram_message_id,omitempty"`
	Relevance         float64  `json:"relevance,omitempty"`
}

// LinkKind distinguishes how a download link should be handled downstream.
type LinkKind string

const (
	LinkKindDirect    LinkKind = "direct"
	LinkKindShortlink LinkKind = "shortlink"
	LinkKindStreaming LinkKind = "streaming"
)

// DownloadLink is one candidate download or stream extracted from a detail page.
type DownloadLink struct {
	URL      string   `json:"url"`
	Text     string   `json:"text,omitempty"`
	Host     string   `json:"host,omitempty"`
	Quality  string   `json:"quality,omitempty"`
	FileSize string   `json:"file_size,omitempty"`
	Kind     LinkKind `json:"kind,omitempty"`
}

// ExtractionResult is the normalized outcome of scraping a movie detail page.
type ExtractionResult struct {
	MovieURL      string         `json:"movie_url"`
	Source        string         `json:"source"`
	PageTitle     string         `json:"page_title,omitempty"`
	DownloadLinks []DownloadLink `json:"download_links"`
	TotalLinks    int            `json:"total_links"`
}

// HealthStatus is the classification bucket for a checked link.
type HealthStatus string

const (
	HealthInvalid          HealthStatus = "invalid"
	HealthHealthy          HealthStatus = "healthy"
	HealthUnhealthy        HealthStatus = "unhealthy"
	HealthWarning          HealthStatus = "warning"
	HealthRedirect         HealthStatus = "redirect"
	HealthForbidden        HealthStatus = "forbidden"
	HealthNotFound         HealthStatus = "not_found"
	HealthServerError      HealthStatus = "server_error"
	HealthUnknown          HealthStatus = "unknown"
	HealthTimeout          HealthStatus = "timeout"
	HealthConnectionError  HealthStatus = "connection_error"
	HealthError            HealthStatus = "error"
	HealthDead             HealthStatus = "dead"
	HealthLocked           HealthStatus = "locked"
	HealthUnlocked         HealthStatus = "unlocked"
	HealthUnlockedRedirect HealthStatus = "unlocked_redirect"
	HealthShortlinkActive  HealthStatus = "shortlink_active"
	HealthShortlinkError   HealthStatus = "shortlink_error"
)

// LinkHealth describes the outcome of checking a single download link.
type LinkHealth struct {
	Status         HealthStatus `json:"status"`
	Color          string       `json:"color"`
	Message        string       `json:"message"`
	ResponseCode   int          `json:"response_code,omitempty"`
	ResponseTimeMS float64      `json:"response_time,omitempty"`
	ContentType    string       `json:"content_type,omitempty"`
	FileSize       string       `json:"file_size,omitempty"`
	IsLocked       bool         `json:"is_locked"`
	IsStreaming    bool         `json:"is_streaming,omitempty"`
	FinalURL       string       `json:"final_url,omitempty"`
	UnlockURL      string       `json:"unlock_url,omitempty"`
}
