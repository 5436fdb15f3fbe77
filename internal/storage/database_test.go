package storage

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/conorfennell/timeline/internal/ai"
	"github.com/conorfennell/timeline/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open() #%d failed: %v", i+1, err)
		}
		db.Close()
	}
}

func TestSources(t *testing.T) {
	db := openTestDB(t)

	missing, err := db.FindSourceByPath("/nowhere")
	if err != nil || missing != nil {
		t.Fatalf("Expected (nil, nil) for a missing source, got (%v, %v)", missing, err)
	}

	localID, err := db.InsertSource(SourceLocal, "/decks")
	if err != nil {
		t.Fatalf("InsertSource() failed: %v", err)
	}
	if _, err := db.InsertSource(SourceGit, "https://example.com/decks.git"); err != nil {
		t.Fatalf("InsertSource() failed: %v", err)
	}
	if _, err := db.InsertSource(SourceLocal, "/decks"); err == nil {
		t.Error("Expected a duplicate path to be rejected")
	}

	if err := db.UpdateSourceLastScanned(localID); err != nil {
		t.Fatalf("UpdateSourceLastScanned() failed: %v", err)
	}
	s, err := db.FindSourceByPath("/decks")
	if err != nil || s == nil {
		t.Fatalf("FindSourceByPath() = %v, %v", s, err)
	}
	if s.ID != localID || s.Type != SourceLocal || !s.LastScanned.Valid {
		t.Errorf("Unexpected source %+v", s)
	}

	all, err := db.GetAllSources()
	if err != nil {
		t.Fatalf("GetAllSources() failed: %v", err)
	}
	if len(all) != 2 || all[1].Type != SourceGit || all[1].LastScanned.Valid {
		t.Errorf("Unexpected sources %+v", all)
	}
}

func TestEvents(t *testing.T) {
	db := openTestDB(t)
	sourceID, _ := db.InsertSource(SourceLocal, "/decks")

	events := []domain.Card{
		{ID: "a", Title: "Hastings", Category: "war", Difficulty: 2, DateOccurred: "1066-10-14"},
		{ID: "b", Title: "Moon landing", Description: "Apollo 11", Category: "science", Difficulty: 1, DateOccurred: "1969-07-20"},
		{ID: "c", Title: "Waterloo", Category: "war", Difficulty: 3, DateOccurred: "1815-06-18"},
	}
	for _, e := range events {
		if err := db.UpsertEvent(e, sourceID); err != nil {
			t.Fatalf("UpsertEvent() failed: %v", err)
		}
	}

	got, err := db.FindEventByID("b")
	if err != nil || got == nil || *got != events[1] {
		t.Fatalf("FindEventByID() = %+v, %v", got, err)
	}
	if got, err := db.FindEventByID("zzz"); got != nil || err != nil {
		t.Errorf("Expected (nil, nil) for a missing event, got (%v, %v)", got, err)
	}

	updated := events[0]
	updated.Difficulty = 5
	if err := db.UpsertEvent(updated, sourceID); err != nil {
		t.Fatalf("UpsertEvent() update failed: %v", err)
	}
	if got, _ := db.FindEventByID("a"); got.Difficulty != 5 {
		t.Errorf("Expected the upsert to update difficulty, got %d", got.Difficulty)
	}

	testCases := []struct {
		name       string
		categories []string
		expected   []domain.CardID
	}{
		{"all events", nil, []domain.CardID{"a", "b", "c"}},
		{"one category", []string{"war"}, []domain.CardID{"a", "c"}},
		{"two categories", []string{"science", "war"}, []domain.CardID{"a", "b", "c"}},
		{"unknown category", []string{"art"}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := db.GetEventPool(tc.categories)
			if err != nil {
				t.Fatalf("GetEventPool() failed: %v", err)
			}
			var ids []domain.CardID
			for _, c := range pool {
				ids = append(ids, c.ID)
			}
			if !reflect.DeepEqual(ids, tc.expected) {
				t.Errorf("Expected %v, but got %v", tc.expected, ids)
			}
		})
	}

	if err := db.DeleteEventByID("c"); err != nil {
		t.Fatalf("DeleteEventByID() failed: %v", err)
	}
	bySource, err := db.GetEventsBySourceID(sourceID)
	if err != nil || len(bySource) != 2 {
		t.Errorf("Expected 2 events left for the source, got %d (%v)", len(bySource), err)
	}
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)
	s := &domain.GameSession{
		SessionID:  "s1",
		Timeline:   domain.TimelineOf(domain.Card{ID: "a", Title: "Hastings", Category: "war", Difficulty: 2, DateOccurred: "1066-10-14"}),
		PlayerHand: []domain.Card{{ID: "b", Title: "Waterloo", Category: "war", Difficulty: 3, DateOccurred: "1815-06-18"}},
		Settings:   domain.Settings{Difficulty: "hard", CardCount: 1},
		StartTime:  1700000000000,
		Attempts:   map[domain.CardID]int{"b": 2},
		Status:     domain.Playing,
	}

	if got, err := db.LoadSession("s1"); got != nil || err != nil {
		t.Fatalf("Expected (nil, nil) before saving, got (%v, %v)", got, err)
	}
	if err := db.SaveSession(s); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	s.Score = 250
	s.Status = domain.Won
	if err := db.SaveSession(s); err != nil {
		t.Fatalf("SaveSession() overwrite failed: %v", err)
	}

	got, err := db.LoadSession("s1")
	if err != nil {
		t.Fatalf("LoadSession() failed: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Loaded session differs.\nwant %+v\n got %+v", s, got)
	}
	if n, _ := db.CountSessions(domain.Won); n != 1 {
		t.Errorf("Expected 1 won session, got %d", n)
	}
	if n, _ := db.CountSessions(domain.Playing); n != 0 {
		t.Errorf("Expected 0 sessions in play, got %d", n)
	}
}

func TestMemory(t *testing.T) {
	db := openTestDB(t)

	if records, err := db.LoadMemory("default"); err != nil || len(records) != 0 {
		t.Fatalf("Expected no memory for a new opponent, got %v, %v", records, err)
	}

	records := []ai.Record{
		{Key: ai.Key{Category: "war", Decade: 1810, Difficulty: 3}, Entry: ai.Entry{Attempts: 3, Successes: 2, Accuracy: 0.6866}},
		{Key: ai.Key{Category: "science", Decade: ai.UnknownDecade, Difficulty: 1}, Entry: ai.Entry{Attempts: 1, Accuracy: 0.1}},
		{Key: ai.Key{Category: "art", Decade: 1500, Difficulty: 5}, Entry: ai.Entry{Attempts: 1, Successes: 1, Accuracy: 1}},
	}
	if err := db.SaveMemory("default", records); err != nil {
		t.Fatalf("SaveMemory() failed: %v", err)
	}
	if err := db.SaveMemory("rival", records[:1]); err != nil {
		t.Fatalf("SaveMemory() failed: %v", err)
	}

	got, err := db.LoadMemory("default")
	if err != nil {
		t.Fatalf("LoadMemory() failed: %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Errorf("Loaded memory differs.\nwant %+v\n got %+v", records, got)
	}

	if err := db.SaveMemory("default", records[2:]); err != nil {
		t.Fatalf("SaveMemory() replace failed: %v", err)
	}
	got, _ = db.LoadMemory("default")
	if len(got) != 1 || got[0].Key.Category != "art" {
		t.Errorf("Expected the save to replace old buckets, got %+v", got)
	}
	if rival, _ := db.LoadMemory("rival"); len(rival) != 1 {
		t.Errorf("Expected other opponents to be untouched, got %+v", rival)
	}
}

func TestResults(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	for i, status := range []domain.Status{domain.Won, domain.Lost, domain.Abandoned} {
		r := domain.GameResult{
			SessionID:  string(rune('a' + i)),
			Status:     status,
			Score:      100 * i,
			AIScore:    50,
			Opponent:   "default",
			Difficulty: "medium",
			FinishedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.RecordResult(r); err != nil {
			t.Fatalf("RecordResult() failed: %v", err)
		}
	}
	if err := db.RecordResult(domain.GameResult{SessionID: "x", Status: domain.Won, Opponent: "rival", FinishedAt: base}); err != nil {
		t.Fatalf("RecordResult() failed: %v", err)
	}

	results, err := db.RecentResults("default", 2)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].SessionID != "c" || results[0].Status != domain.Abandoned || results[1].Status != domain.Lost {
		t.Errorf("Expected newest first, got %+v", results)
	}
	if !results[1].FinishedAt.Equal(base.Add(time.Hour)) || results[1].Score != 100 {
		t.Errorf("Unexpected result %+v", results[1])
	}
}
