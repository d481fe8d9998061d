package engine

import (
	"errors"
	"testing"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

func sessionWith(t *testing.T, msgs ...models.ChatMessage) *Session {
	t.Helper()
	s := NewSession(models.DefaultSettings())
	s.IngestMessages(msgs)
	return s
}

func TestSession_StartsInRegistration(t *testing.T) {
	s := NewSession(models.DefaultSettings())
	if s.Phase() != PhaseRegistration {
		t.Fatalf("unexpected phase: %s", s.Phase())
	}
	snap := s.Snapshot()
	if snap.PoolLeft != 90 || len(snap.Drawn) != 0 {
		t.Fatalf("fresh session pool: left=%d drawn=%d", snap.PoolLeft, len(snap.Drawn))
	}
}

func TestSession_FirstDrawEntersDrawingPhase(t *testing.T) {
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото", 100))

	number, err := s.DrawNext()
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if number == "" {
		t.Fatal("draw must return the committed number")
	}
	if s.Phase() != PhaseDrawing {
		t.Fatalf("unexpected phase: %s", s.Phase())
	}
	if got := s.Drawn(); len(got) != 1 || got[0] != number {
		t.Fatalf("unexpected drawn sequence: %v", got)
	}
}

func TestSession_ManualDrawValidatesPool(t *testing.T) {
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото", 100))

	if err := s.DrawManual("42"); err != nil {
		t.Fatalf("manual draw failed: %v", err)
	}
	if err := s.DrawManual("42"); !errors.Is(err, ErrNotInPool) {
		t.Fatalf("expected ErrNotInPool, got %v", err)
	}
}

func TestSession_WinHandsOverToSuperGame(t *testing.T) {
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото 11 12 13 14 15 16 17 18", 100))

	for _, n := range []string{"11", "12", "13"} {
		if err := s.DrawManual(n); err != nil {
			t.Fatalf("draw %s failed: %v", n, err)
		}
	}

	if s.Phase() != PhaseSuperGame {
		t.Fatalf("three consecutive slots matched, expected supergame, got %s", s.Phase())
	}
	w := s.Winner()
	if w == nil || w.Ticket.OwnerID != "u1" {
		t.Fatalf("unexpected winner: %+v", w)
	}
	if w.MinNeeded > 0 {
		t.Fatalf("winner must have a full window: minNeeded=%d", w.MinNeeded)
	}
	if _, err := s.DrawNext(); !errors.Is(err, ErrDrawClosed) {
		t.Fatalf("draws must stop after a win, got %v", err)
	}
}

func TestSession_NoWinDuringRegistrationIngest(t *testing.T) {
	s := NewSession(models.DefaultSettings())
	changed := s.IngestMessages([]models.ChatMessage{
		chatMsg("m1", "u1", "alice", "лото 1 2 3", 100),
	})
	if !changed {
		t.Fatal("registration must record the ticket")
	}
	if s.Phase() != PhaseRegistration || s.Winner() != nil {
		t.Fatal("no win can be declared before the draw phase")
	}
}

func TestSession_SuperGameGuessesViaChat(t *testing.T) {
	defer identityPerm(t)()
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото 11 12 13 14 15 16 17 18", 100))
	for _, n := range []string{"11", "12", "13"} {
		s.DrawManual(n)
	}

	changed := s.IngestMessages([]models.ChatMessage{
		chatMsg("g1", "u2", "bob", "+супер 1 2", 300),
		chatMsg("g2", "u1", "alice", "+супер 1 2 3", 300),
	})
	if !changed {
		t.Fatal("winner guesses must be ingested")
	}
	g := s.SuperGame().Guess
	if g == nil || g.OwnerID != "u1" || len(g.Cells) != 3 {
		t.Fatalf("unexpected guess state: %+v", g)
	}
}

func TestSession_RevealFinishesRound(t *testing.T) {
	defer identityPerm(t)()
	set := models.DefaultSettings()
	set.BaseGuessCount = 2
	set.BonusGuessEnabled = false
	s := NewSession(set)
	s.IngestMessages([]models.ChatMessage{
		chatMsg("m1", "u1", "alice", "лото 11 12 13 14 15 16 17 18", 100),
	})
	for _, n := range []string{"11", "12", "13"} {
		s.DrawManual(n)
	}
	s.IngestMessages([]models.ChatMessage{
		chatMsg("g1", "u1", "alice", "+супер 29 30", 300),
	})

	if _, err := s.RevealCell(28); err != nil {
		t.Fatalf("reveal failed: %v", err)
	}
	if s.Phase() != PhaseSuperGame {
		t.Fatalf("one guess still unrevealed, got phase %s", s.Phase())
	}
	if _, err := s.RevealCell(29); err != nil {
		t.Fatalf("reveal failed: %v", err)
	}
	if s.Phase() != PhaseFinished {
		t.Fatalf("all guesses revealed, expected finished, got %s", s.Phase())
	}
}

func TestSession_DeleteTicketPurgesGuess(t *testing.T) {
	defer identityPerm(t)()
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото 11 12 13 14 15 16 17 18", 100))
	for _, n := range []string{"11", "12", "13"} {
		s.DrawManual(n)
	}
	s.IngestMessages([]models.ChatMessage{
		chatMsg("g1", "u1", "alice", "+супер 1 2", 300),
	})

	snap := s.Snapshot()
	if len(snap.ChatTickets) != 1 {
		t.Fatalf("unexpected ticket count: %d", len(snap.ChatTickets))
	}
	id := snap.ChatTickets[0].Ticket.ID

	if !s.DeleteTicket(id) {
		t.Fatal("delete must succeed")
	}
	if s.DeleteTicket(id) {
		t.Fatal("second delete must be a no-op")
	}
	if s.SuperGame().Guess != nil {
		t.Fatal("owner's super-game guess must be purged with the ticket")
	}
}

func TestSession_WinThresholdHotReload(t *testing.T) {
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото 11 12 13 14 15 16 17 18", 100))

	s.SetWinThreshold(2)
	for _, n := range []string{"11", "12"} {
		if err := s.DrawManual(n); err != nil {
			t.Fatalf("draw %s failed: %v", n, err)
		}
	}
	if s.Phase() != PhaseSuperGame {
		t.Fatalf("K=2 window matched, expected supergame, got %s", s.Phase())
	}
}

func TestSession_SnapshotIsDetached(t *testing.T) {
	s := sessionWith(t, chatMsg("m1", "u1", "alice", "лото", 100))
	snap := s.Snapshot()
	if len(snap.ChatTickets) != 1 {
		t.Fatalf("unexpected ticket count: %d", len(snap.ChatTickets))
	}

	snap.Drawn = append(snap.Drawn, "99")
	snap.ChatTickets[0].Ticket.Value[0] = "xx"

	fresh := s.Snapshot()
	if len(fresh.Drawn) != 0 {
		t.Fatal("mutating a snapshot must not affect the session")
	}
	if fresh.ChatTickets[0].Ticket.Value[0] == "xx" {
		t.Fatal("snapshot tickets must not alias session state")
	}
}
