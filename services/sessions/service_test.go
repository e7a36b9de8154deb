package sessions

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"cinehound/models"
)

// newTestService returns a service with a controllable clock and no sweeper
// races (the sweep interval is long enough to never fire during a test).
func newTestService(timeout time.Duration) (*Service, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewService(timeout, time.Hour)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSessionTTLBoundaries(t *testing.T) {
	s, now := newTestService(15 * time.Minute)
	defer s.Close()

	id := s.Create()

	*now = now.Add(14 * time.Minute)
	if !s.Exists(id) {
		t.Fatal("session should still be live at t0+14m")
	}

	// Exists refreshed lastActivity at t0+14m; idle out from there.
	*now = now.Add(16 * time.Minute)
	if s.Exists(id) {
		t.Fatal("session should be expired after 16m idle")
	}

	// Expired sessions stay gone even if the clock rewinds.
	*now = now.Add(-16 * time.Minute)
	if s.Exists(id) {
		t.Fatal("expired session must not resurrect")
	}
}

func TestSessionExpiresWithoutActivity(t *testing.T) {
	s, now := newTestService(15 * time.Minute)
	defer s.Close()

	id := s.Create()
	*now = now.Add(16 * time.Minute)

	if _, ok := s.Stats(id); ok {
		t.Fatal("stats for an expired session should report absent")
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	s, now := newTestService(15 * time.Minute)
	defer s.Close()

	keep := s.Create()
	drop := s.Create()
	_ = keep

	*now = now.Add(10 * time.Minute)
	s.Exists(keep) // refresh
	*now = now.Add(10 * time.Minute)

	if removed := s.sweep(); removed != 1 {
		t.Fatalf("sweep removed %d sessions, want 1", removed)
	}
	if s.Exists(drop) {
		t.Error("idle session should have been swept")
	}
	if !s.Exists(keep) {
		t.Error("refreshed session should survive the sweep")
	}
}

func TestConversationHistoryBounded(t *testing.T) {
	s, _ := newTestService(15 * time.Minute)
	defer s.Close()

	id := s.Create()
	results := []models.Movie{{Title: "RRR", Source: "DownloadHub"}}

	for i := 0; i < 13; i++ {
		if !s.AddConversation(id, fmt.Sprintf("query %d", i), "reply", results) {
			t.Fatalf("AddConversation %d failed", i)
		}
	}

	st, ok := s.Stats(id)
	if !ok {
		t.Fatal("session missing")
	}
	if st.ConversationCount != maxConversations {
		t.Errorf("conversation count = %d, want %d", st.ConversationCount, maxConversations)
	}
	if st.SearchCount != maxSearchHistory {
		t.Errorf("search count = %d, want %d", st.SearchCount, maxSearchHistory)
	}

	// The oldest entries must have been dropped, not the newest.
	ctx := s.ConversationContext(id)
	if !strings.Contains(ctx, "query 12") {
		t.Error("context should include the latest conversation")
	}
	if strings.Contains(ctx, "query 0") {
		t.Error("context should not include trimmed conversations")
	}
}

func TestConversationContextSections(t *testing.T) {
	s, now := newTestService(15 * time.Minute)
	defer s.Close()

	id := s.Create()
	s.AddConversation(id, "find pushpa", "Found it", []models.Movie{{Title: "Pushpa"}})
	s.UpdatePreferences(id, map[string]string{"language": "telugu"})
	s.SetMovieContext(id, map[string]string{"title": "Pushpa"})

	ctx := s.ConversationContext(id)
	for _, want := range []string{"RECENT CONVERSATION HISTORY:", "USER PREFERENCES:", "language: telugu", "CURRENT MOVIE CONTEXT:", "FOLLOW-UP CONTEXT:"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q\n%s", want, ctx)
		}
	}

	// Follow-up context decays after five minutes.
	*now = now.Add(6 * time.Minute)
	ctx = s.ConversationContext(id)
	if strings.Contains(ctx, "FOLLOW-UP CONTEXT:") {
		t.Error("stale follow-up context should be omitted")
	}
}

func TestAddConversationUnknownSession(t *testing.T) {
	s, _ := newTestService(15 * time.Minute)
	defer s.Close()

	if s.AddConversation("nope", "hi", "there", nil) {
		t.Error("unknown session should reject writes")
	}
}

func TestAllStats(t *testing.T) {
	s, _ := newTestService(15 * time.Minute)
	defer s.Close()

	s.Create()
	s.Create()

	all := s.AllStats()
	if all.TotalActiveSessions != 2 {
		t.Errorf("total = %d, want 2", all.TotalActiveSessions)
	}
	if all.SessionTimeoutMinutes != 15 {
		t.Errorf("timeout minutes = %v, want 15", all.SessionTimeoutMinutes)
	}
}
