package models

import "time"

// ChannelMovie is a row in the Telegram channel movie index.
type ChannelMovie struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	NormalizedTitle string     `json:"normalized_title"`
	MessageID       int64      `json:"message_id"`
	FileID          string     `json:"file_id,omitempty"`
	FileType        string     `json:"file_type,omitempty"`
	FileSize        int64      `json:"file_size,omitempty"`
	Year            string     `json:"year,omitempty"`
	Quality         string     `json:"quality,omitempty"`
	Language        string     `json:"language,omitempty"`
	AddedDate       time.Time  `json:"added_date"`
	LastAccessed    *time.Time `json:"last_accessed,omitempty"`
	AccessCount     int64      `json:"access_count"`
}

// ChannelFileInfo carries the optional metadata supplied when indexing a movie.
type ChannelFileInfo struct {
	FileID   string `json:"file_id,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Year     string `json:"year,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Language string `json:"language,omitempty"`
}

// SearchLogEntry is one append-only audit record of a channel index lookup.
type SearchLogEntry struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ChatID       int64     `json:"chat_id"`
	MovieTitle   string    `json:"movie_title"`
	Found        bool      `json:"found"`
	Forwarded    bool      `json:"forwarded"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SearchDate   time.Time `json:"search_date"`
}

// ChannelStats summarizes index size and recent lookup activity.
type ChannelStats struct {
	TotalMovies           int64   `json:"total_movies"`
	RecentSearches24h     int64   `json:"recent_searches_24h"`
	SuccessfulForwards24h int64   `json:"successful_forwards_24h"`
	SuccessRate           float64 `json:"success_rate"`
}
