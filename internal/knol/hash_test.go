package knol

import (
	"testing"

	"github.com/conorfennell/timeline/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Title:        "  Fall of the  Berlin Wall \r\n",
		DateOccurred: "1989-11-09",
		Category:     "Politics",
		Description:  "ignored",
	}
	expected := "fall of the berlin wall\n1989-11-09\npolitics"

	if got := Normalize(card); got != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, got)
	}
}

func TestHash(t *testing.T) {
	t.Run("hash is deterministic", func(t *testing.T) {
		card1 := domain.Card{Title: "Moon landing", DateOccurred: "1969-07-20"}
		card2 := domain.Card{Title: "Moon landing", DateOccurred: "1969-07-20"}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes for identical cards to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		card1 := domain.Card{Title: "  moon landing ", DateOccurred: "1969-07-20", Category: "Science"}
		card2 := domain.Card{Title: "Moon Landing", DateOccurred: "1969-07-20", Category: "science", Difficulty: 4}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("different dates have different hashes", func(t *testing.T) {
		card1 := domain.Card{Title: "Treaty", DateOccurred: "1648-10-24"}
		card2 := domain.Card{Title: "Treaty", DateOccurred: "1919-06-28"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected hashes for different cards to be different")
		}
	})
}

func TestAssignID(t *testing.T) {
	withID := domain.Card{ID: "42", Title: "x"}
	if got := AssignID(withID); got.ID != "42" {
		t.Errorf("Expected existing id to be kept, got %q", got.ID)
	}

	without := domain.Card{Title: "Moon landing", DateOccurred: "1969-07-20"}
	got := AssignID(without)
	if len(got.ID) != 16 {
		t.Fatalf("Expected a 16 character id, got %q", got.ID)
	}
	if got.ID != domain.CardID(Hash(without)[:16]) {
		t.Errorf("Expected id to be the hash prefix, got %q", got.ID)
	}
}
