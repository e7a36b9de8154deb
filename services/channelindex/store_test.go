package channelindex

import (
	"path/filepath"
	"testing"

	"cinehound/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndExactSearch(t *testing.T) {
	store := newTestStore(t)

	err := store.Add("Pushpa 2 Full Movie HD", 101, models.ChannelFileInfo{
		FileType: "video",
		FileSize: 1_400_000_000,
		Year:     "2024",
		Quality:  "1080p",
		Language: "Telugu",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Stopword-laden queries still hit: both sides normalize identically.
	got, err := store.Search("pushpa 2")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].MessageID != 101 {
		t.Errorf("message_id = %d, want 101", got[0].MessageID)
	}
	if got[0].Title != "Pushpa 2 Full Movie HD" {
		t.Errorf("title = %q, original caption must be preserved", got[0].Title)
	}
	if got[0].Quality != "1080p" || got[0].Language != "Telugu" {
		t.Errorf("metadata not round-tripped: %+v", got[0])
	}
}

func TestAddValidation(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add("   ", 1, models.ChannelFileInfo{}); err != ErrTitleRequired {
		t.Errorf("blank title: err = %v, want ErrTitleRequired", err)
	}
	if err := store.Add("RRR", 0, models.ChannelFileInfo{}); err != ErrMessageIDRequired {
		t.Errorf("zero message_id: err = %v, want ErrMessageIDRequired", err)
	}
}

func TestDuplicateMessageIDReplaces(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add("Jawan", 55, models.ChannelFileInfo{Quality: "720p"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add("Jawan Extended Cut", 55, models.ChannelFileInfo{Quality: "1080p"}); err != nil {
		t.Fatalf("Add replacement: %v", err)
	}

	got, err := store.Search("jawan extended cut")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1 (message 55 should have one row)", len(got))
	}
	if got[0].Quality != "1080p" {
		t.Errorf("quality = %q, replacement should win", got[0].Quality)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMovies != 1 {
		t.Errorf("total movies = %d, want 1", stats.TotalMovies)
	}
}

func TestPartialSearchFallback(t *testing.T) {
	store := newTestStore(t)

	store.Add("Salaar Part 1 Ceasefire", 1, models.ChannelFileInfo{})
	store.Add("Salaar Part 2", 2, models.ChannelFileInfo{})
	store.Add("Leo", 3, models.ChannelFileInfo{})

	got, err := store.Search("salaar")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d partial matches, want 2", len(got))
	}
	for _, m := range got {
		if m.Title == "Leo" {
			t.Error("unrelated title leaked into partial results")
		}
	}
}

func TestSearchBumpsAccessTracking(t *testing.T) {
	store := newTestStore(t)

	store.Add("Kalki 2898 AD", 7, models.ChannelFileInfo{})

	for i := 0; i < 3; i++ {
		if _, err := store.Search("kalki 2898 ad"); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}

	got, _, err := store.List(1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].AccessCount != 3 {
		t.Errorf("access_count = %d, want 3", got[0].AccessCount)
	}
	if got[0].LastAccessed == nil {
		t.Error("last_accessed should be set after a hit")
	}
}

func TestListPagination(t *testing.T) {
	store := newTestStore(t)

	for i := int64(1); i <= 25; i++ {
		if err := store.Add("Movie", i, models.ChannelFileInfo{}); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	got, meta, err := store.List(3, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("page 3 has %d rows, want 5", len(got))
	}
	if meta.TotalPages != 3 || !meta.HasPrev || meta.HasNext {
		t.Errorf("pagination meta = %+v", meta)
	}
}

func TestLogSearchAndStats(t *testing.T) {
	store := newTestStore(t)

	store.Add("Animal", 9, models.ChannelFileInfo{})

	logs := []models.SearchLogEntry{
		{UserID: 1, ChatID: 1, MovieTitle: "Animal", Found: true, Forwarded: true},
		{UserID: 2, ChatID: 2, MovieTitle: "Animal", Found: true, Forwarded: true},
		{UserID: 3, ChatID: 3, MovieTitle: "Unknown", Found: false, Forwarded: false, ErrorMessage: "not indexed"},
		{UserID: 4, ChatID: 4, MovieTitle: "Animal", Found: true, Forwarded: false},
	}
	for _, entry := range logs {
		if err := store.LogSearch(entry); err != nil {
			t.Fatalf("LogSearch: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMovies != 1 {
		t.Errorf("total movies = %d, want 1", stats.TotalMovies)
	}
	if stats.RecentSearches24h != 4 {
		t.Errorf("recent searches = %d, want 4", stats.RecentSearches24h)
	}
	if stats.SuccessfulForwards24h != 2 {
		t.Errorf("forwards = %d, want 2", stats.SuccessfulForwards24h)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("success rate = %v, want 50", stats.SuccessRate)
	}
}

func TestDeepLink(t *testing.T) {
	if got := DeepLink("@MovieBot", "Pushpa 2 The Rule"); got != "https://t.me/MovieBot?start=Pushpa_2_The_Rule" {
		t.Errorf("DeepLink = %q", got)
	}
	if got := DeepLink("", "Pushpa"); got != "" {
		t.Errorf("DeepLink without bot = %q, want empty", got)
	}
}
