package engine

import (
	"strings"
	"testing"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

func testSettings() models.Settings {
	return models.DefaultSettings()
}

func testEntrant(id, name string) models.Entrant {
	return models.Entrant{ID: id, Name: name, Platform: "twitch", Channel: "streamer"}
}

func TestParseNumbers_FiltersAndPads(t *testing.T) {
	got := ParseNumbers("4 8 nope 15 0 101 8 23", 90)
	want := []string{"04", "08", "15", "23"}
	if len(got) != len(want) {
		t.Fatalf("unexpected count: got=%d want=%d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected number at %d: got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestParseNumbers_RespectsConfiguredRange(t *testing.T) {
	got := ParseNumbers("95 90 99", 90)
	if len(got) != 1 || got[0] != "90" {
		t.Fatalf("expected only 90 to survive a 90-pool, got %v", got)
	}
}

func TestGenerateValue_SevenValidPlusOneRandom(t *testing.T) {
	pool := NewDrawPool(90).Remaining()
	value := GenerateValue("4 8 15 23 42 14 89", pool, 8, 90)

	if len(value) != 8 {
		t.Fatalf("unexpected ticket size: got=%d want=8", len(value))
	}
	want := []string{"04", "08", "15", "23", "42", "14", "89"}
	for i, v := range want {
		if value[i] != v {
			t.Fatalf("slot %d: got=%q want=%q", i, value[i], v)
		}
	}
	// the padded slot must be a fresh pool number
	extra := value[7]
	for _, v := range want {
		if extra == v {
			t.Fatalf("padded number %q duplicates a supplied one", extra)
		}
	}
	if len(extra) != 2 {
		t.Fatalf("padded number %q is not two-digit", extra)
	}
}

func TestGenerateValue_TruncatesAtSize(t *testing.T) {
	pool := NewDrawPool(90).Remaining()
	value := GenerateValue("1 2 3 4 5 6 7 8 9 10", pool, 8, 90)
	if len(value) != 8 {
		t.Fatalf("unexpected ticket size: got=%d want=8", len(value))
	}
	if value[7] != "08" {
		t.Fatalf("truncation should keep the first 8 in parse order, got last=%q", value[7])
	}
}

func TestGenerateValue_NoTextIsPureRandomFill(t *testing.T) {
	pool := NewDrawPool(90).Remaining()
	value := GenerateValue("", pool, 8, 90)
	if len(value) != 8 {
		t.Fatalf("unexpected ticket size: got=%d want=8", len(value))
	}
	seen := make(map[string]bool)
	for _, v := range value {
		if seen[v] {
			t.Fatalf("duplicate number %q in random fill", v)
		}
		seen[v] = true
		if len(v) != 2 {
			t.Fatalf("number %q is not zero-padded two-digit", v)
		}
	}
}

func TestGenerateValue_SkipsDrawnNumbers(t *testing.T) {
	p := NewDrawPool(90)
	for _, n := range []string{"01", "02", "03"} {
		if err := p.Draw(n); err != nil {
			t.Fatalf("draw failed: %v", err)
		}
	}
	value := GenerateValue("", p.Remaining(), 8, 90)
	for _, v := range value {
		if v == "01" || v == "02" || v == "03" {
			t.Fatalf("ticket contains already-drawn number %q", v)
		}
	}
}

func TestGenerateValue_RejectsRequestedDrawnNumbers(t *testing.T) {
	p := NewDrawPool(90)
	for _, n := range []string{"11", "12"} {
		if err := p.Draw(n); err != nil {
			t.Fatalf("draw failed: %v", err)
		}
	}

	// a latecomer asking for the drawn sequence must not start with matches
	value := GenerateValue("11 12 13 14 15 16 17 18", p.Remaining(), 8, 90)

	if len(value) != 8 {
		t.Fatalf("unexpected ticket size: got=%d want=8", len(value))
	}
	for _, v := range value {
		if v == "11" || v == "12" {
			t.Fatalf("ticket contains already-drawn number %q", v)
		}
	}
	want := []string{"13", "14", "15", "16", "17", "18"}
	for i, v := range want {
		if value[i] != v {
			t.Fatalf("slot %d: got=%q want=%q", i, value[i], v)
		}
	}
}

func TestNewTicket_CompleteRecord(t *testing.T) {
	pool := NewDrawPool(90).Remaining()
	tk := NewTicket(testEntrant("u1", "alice"), "лото 5 6", pool, testSettings(), models.TicketChat, 1000)

	if tk.ID == "" {
		t.Fatal("ticket id must be set")
	}
	if tk.OwnerID != "u1" || tk.OwnerName != "alice" {
		t.Fatalf("unexpected owner: %s/%s", tk.OwnerID, tk.OwnerName)
	}
	if len(tk.Value) != 8 {
		t.Fatalf("unexpected ticket size: got=%d want=8", len(tk.Value))
	}
	if tk.Type != models.TicketChat {
		t.Fatalf("unexpected type: %s", tk.Type)
	}
	if tk.CreatedAt != 1000 {
		t.Fatalf("unexpected created_at: %d", tk.CreatedAt)
	}
	if !strings.HasPrefix(tk.Color, "#") {
		t.Fatalf("unexpected color: %q", tk.Color)
	}
}
