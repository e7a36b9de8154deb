package channelindex

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"cinehound/models"
	"cinehound/utils/pagination"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrMessageIDRequired = errors.New("message_id is required")
)

const partialMatchLimit = 10

// Store is the SQLite-backed index of movies posted to the Telegram channel.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the index database and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add indexes a movie under its normalized title. A repeated message_id
// replaces the previous row (channel edits re-announce the same message).
func (s *Store) Add(title string, messageID int64, info models.ChannelFileInfo) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if messageID == 0 {
		return ErrMessageIDRequired
	}

	_, err := s.db.Exec(`
		INSERT INTO movies (title, normalized_title, message_id, file_id, file_type, file_size, year, quality, language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			title = excluded.title,
			normalized_title = excluded.normalized_title,
			file_id = excluded.file_id,
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			year = excluded.year,
			quality = excluded.quality,
			language = excluded.language`,
		title, NormalizeTitle(title), messageID,
		nullStr(info.FileID), nullStr(info.FileType), nullInt(info.FileSize),
		nullStr(info.Year), nullStr(info.Quality), nullStr(info.Language),
	)
	if err != nil {
		return fmt.Errorf("index movie: %w", err)
	}

	log.Printf("[channelindex] indexed %q (message %d)", title, messageID)
	return nil
}

// Search looks up movies by title: exact normalized match first, then a
// partial match capped at 10 rows. Hits bump last_accessed/access_count.
func (s *Store) Search(query string) ([]models.ChannelMovie, error) {
	normalized := NormalizeTitle(query)

	rows, err := s.db.Query(`
		SELECT id, title, normalized_title, message_id, file_id, file_type, file_size,
		       year, quality, language, added_date, last_accessed, access_count
		FROM movies
		WHERE normalized_title = ?
		ORDER BY added_date DESC`, normalized)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	movies, err := scanMovies(rows)
	if err != nil {
		return nil, err
	}

	if len(movies) == 0 {
		rows, err := s.db.Query(`
			SELECT id, title, normalized_title, message_id, file_id, file_type, file_size,
			       year, quality, language, added_date, last_accessed, access_count
			FROM movies
			WHERE normalized_title LIKE ? OR title LIKE ?
			ORDER BY added_date DESC
			LIMIT ?`, "%"+normalized+"%", "%"+query+"%", partialMatchLimit)
		if err != nil {
			return nil, fmt.Errorf("partial search index: %w", err)
		}
		movies, err = scanMovies(rows)
		if err != nil {
			return nil, err
		}
	}

	for i := range movies {
		s.recordAccess(movies[i].ID)
	}
	return movies, nil
}

func (s *Store) recordAccess(id int64) {
	if _, err := s.db.Exec(`
		UPDATE movies
		SET last_accessed = CURRENT_TIMESTAMP, access_count = access_count + 1
		WHERE id = ?`, id); err != nil {
		log.Printf("[channelindex] record access for row %d: %v", id, err)
	}
}

// LogSearch appends an audit record of a lookup attempt.
func (s *Store) LogSearch(entry models.SearchLogEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO search_logs (user_id, chat_id, movie_title, found, forwarded, error_message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.ChatID, entry.MovieTitle, entry.Found, entry.Forwarded,
		nullStr(entry.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("log search: %w", err)
	}
	return nil
}

// List returns a page of indexed movies, newest first.
func (s *Store) List(page, perPage int) ([]models.ChannelMovie, pagination.Page, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return nil, pagination.Page{}, fmt.Errorf("count movies: %w", err)
	}

	meta := pagination.Paginate(total, page, perPage)
	start, _ := pagination.Bounds(total, meta.Page, meta.PerPage)

	rows, err := s.db.Query(`
		SELECT id, title, normalized_title, message_id, file_id, file_type, file_size,
		       year, quality, language, added_date, last_accessed, access_count
		FROM movies
		ORDER BY added_date DESC, id DESC
		LIMIT ? OFFSET ?`, meta.PerPage, start)
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("list movies: %w", err)
	}

	movies, err := scanMovies(rows)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return movies, meta, nil
}

// Stats summarizes index size and the last 24 hours of lookups.
func (s *Store) Stats() (models.ChannelStats, error) {
	var stats models.ChannelStats

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&stats.TotalMovies); err != nil {
		return stats, fmt.Errorf("count movies: %w", err)
	}
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM search_logs
		WHERE search_date >= datetime('now', '-24 hours')`).Scan(&stats.RecentSearches24h); err != nil {
		return stats, fmt.Errorf("count searches: %w", err)
	}
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM search_logs
		WHERE forwarded = 1 AND search_date >= datetime('now', '-24 hours')`).Scan(&stats.SuccessfulForwards24h); err != nil {
		return stats, fmt.Errorf("count forwards: %w", err)
	}

	if stats.RecentSearches24h > 0 {
		stats.SuccessRate = float64(stats.SuccessfulForwards24h) / float64(stats.RecentSearches24h) * 100
	}
	return stats, nil
}

func scanMovies(rows *sql.Rows) ([]models.ChannelMovie, error) {
	defer rows.Close()

	var out []models.ChannelMovie
	for rows.Next() {
		var (
			m            models.ChannelMovie
			fileID       sql.NullString
			fileType     sql.NullString
			fileSize     sql.NullInt64
			year         sql.NullString
			quality      sql.NullString
			language     sql.NullString
			lastAccessed sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.NormalizedTitle, &m.MessageID,
			&fileID, &fileType, &fileSize, &year, &quality, &language,
			&m.AddedDate, &lastAccessed, &m.AccessCount); err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		m.FileID = fileID.String
		m.FileType = fileType.String
		m.FileSize = fileSize.Int64
		m.Year = year.String
		m.Quality = quality.String
		m.Language = language.String
		if lastAccessed.Valid {
			t := lastAccessed.Time
			m.LastAccessed = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

// DeepLink builds the t.me deep link that triggers bot-side forwarding for a
// title. Returns "" when no bot username is configured.
func DeepLink(botUsername, title string) string {
	botUsername = strings.TrimPrefix(strings.TrimSpace(botUsername), "@")
	if botUsername == "" {
		return ""
	}
	payload := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, payload)
}
