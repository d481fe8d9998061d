package engine

import (
	"errors"
	"time"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

type Phase string

const (
	PhaseRegistration Phase = "registration"
	PhaseDrawing      Phase = "drawing"
	PhaseSuperGame    Phase = "supergame"
	PhaseFinished     Phase = "finished"
)

var (
	ErrDrawClosed  = errors.New("draw phase is over")
	ErrNoSuperGame = errors.New("no super game in progress")
)

// Session owns one game's complete state: both ticket pools, the draw pool,
// the drawn sequence and the super game. All access is single-timeline; the
// broker serializes callers.
type Session struct {
	settings      models.Settings
	phase         Phase
	entrants      map[string]models.Entrant
	chatTickets   []models.Ticket
	pointsTickets []models.Ticket
	pool          *DrawPool
	super         *SuperGame
	winner        *models.TicketScore
	rec           *Reconciler
	createdAt     time.Time
}

func NewSession(set models.Settings) *Session {
	set = set.WithDefaults()
	return &Session{
		settings:  set,
		phase:     PhaseRegistration,
		entrants:  make(map[string]models.Entrant),
		pool:      NewDrawPool(set.PoolSize),
		rec:       NewReconciler(),
		createdAt: time.Now(),
	}
}

func (s *Session) Phase() Phase {
	return s.phase
}

func (s *Session) Settings() models.Settings {
	return s.settings
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// SetWinThreshold hot-reloads K; it takes effect on the next evaluation pass.
func (s *Session) SetWinThreshold(k int) {
	if k > 0 {
		s.settings.WinThreshold = k
	}
}

// IngestMessages processes one poll batch according to the current phase and
// reports whether visible state changed. During registration and drawing the
// batch feeds both entrant pools (late joiners still get tickets once the
// draw has started, they just cannot refresh). During the super game only the
// winner's guess messages matter.
func (s *Session) IngestMessages(batch []models.ChatMessage) bool {
	if len(batch) == 0 {
		return false
	}
	UpdateEntrants(s.entrants, batch)

	switch s.phase {
	case PhaseRegistration, PhaseDrawing:
		registration := s.phase == PhaseRegistration
		pool := s.pool.Remaining()
		chat, chatChanged := s.rec.Apply(s.chatTickets, batch, models.TicketChat, pool, s.settings, registration)
		points, pointsChanged := s.rec.Apply(s.pointsTickets, batch, models.TicketPoints, pool, s.settings, registration)
		s.chatTickets = chat
		s.pointsTickets = points
		return chatChanged || pointsChanged
	case PhaseSuperGame:
		changed := false
		for _, m := range batch {
			if s.super.IngestGuess(m) {
				changed = true
			}
		}
		return changed
	}
	return false
}

// DrawNext samples a random undrawn number and commits it.
func (s *Session) DrawNext() (string, error) {
	if s.phase == PhaseSuperGame || s.phase == PhaseFinished {
		return "", ErrDrawClosed
	}
	number, err := s.pool.SampleNext()
	if err != nil {
		return "", err
	}
	return number, s.commitDraw(number)
}

// DrawManual commits an operator-entered number after validating pool
// membership.
func (s *Session) DrawManual(number string) error {
	if s.phase == PhaseSuperGame || s.phase == PhaseFinished {
		return ErrDrawClosed
	}
	if !s.pool.Contains(number) {
		return ErrNotInPool
	}
	return s.commitDraw(number)
}

func (s *Session) commitDraw(number string) error {
	if err := s.pool.Draw(number); err != nil {
		return err
	}
	if s.phase == PhaseRegistration {
		s.phase = PhaseDrawing
	}
	s.checkWin()
	return nil
}

func (s *Session) allTickets() []models.Ticket {
	all := make([]models.Ticket, 0, len(s.chatTickets)+len(s.pointsTickets))
	all = append(all, s.chatTickets...)
	all = append(all, s.pointsTickets...)
	return all
}

// checkWin runs the full evaluation pass after a draw and hands over to the
// super game once a ticket has a fully matched window.
func (s *Session) checkWin() {
	if s.phase != PhaseDrawing {
		return
	}
	scores := Evaluate(s.allTickets(), s.pool.Drawn(), s.settings.WinThreshold)
	best, won := PickWinner(scores)
	if !won {
		return
	}
	s.winner = &best
	s.super = NewSuperGame(s.settings, best.Ticket.OwnerID, best.Ticket.OwnerName)
	s.phase = PhaseSuperGame
}

// RevealCell flips one super-game board cell; the session finishes when every
// chosen cell has been revealed.
func (s *Session) RevealCell(idx int) (string, error) {
	if s.phase != PhaseSuperGame {
		return "", ErrNoSuperGame
	}
	result, err := s.super.Reveal(idx)
	if err != nil {
		return "", err
	}
	if s.super.Finished() {
		s.phase = PhaseFinished
	}
	return result, nil
}

// DeleteTicket removes a ticket by id from either pool (operator action) and
// purges the owner's super-game guess with it.
func (s *Session) DeleteTicket(id string) bool {
	ownerID, removed := removeTicket(&s.chatTickets, id)
	if !removed {
		ownerID, removed = removeTicket(&s.pointsTickets, id)
	}
	if !removed {
		return false
	}
	if s.super != nil && s.super.Guess != nil && s.super.Guess.OwnerID == ownerID {
		s.super.Guess = nil
	}
	return true
}

func removeTicket(tickets *[]models.Ticket, id string) (string, bool) {
	for i, t := range *tickets {
		if t.ID == id {
			*tickets = append((*tickets)[:i], (*tickets)[i+1:]...)
			return t.OwnerID, true
		}
	}
	return "", false
}

func (s *Session) Winner() *models.TicketScore {
	return s.winner
}

func (s *Session) SuperGame() *SuperGame {
	return s.super
}

func (s *Session) Drawn() []string {
	return s.pool.Drawn()
}

func (s *Session) Entrant(id string) (models.Entrant, bool) {
	e, ok := s.entrants[id]
	return e, ok
}

// Snapshot emits the immutable view the presentation layer consumes. Tickets
// come back scored and ordered closest-to-winning first, per channel.
func (s *Session) Snapshot() models.SessionSnapshot {
	drawn := s.pool.Drawn()
	k := s.settings.WinThreshold

	snap := models.SessionSnapshot{
		Phase:         string(s.phase),
		Settings:      s.settings,
		ChatTickets:   cloneScores(Evaluate(s.chatTickets, drawn, k)),
		PointsTickets: cloneScores(Evaluate(s.pointsTickets, drawn, k)),
		Drawn:         drawn,
		PoolLeft:      s.pool.Left(),
	}
	if s.winner != nil {
		w := *s.winner
		w.Ticket.Value = append([]string(nil), w.Ticket.Value...)
		snap.Winner = &w
	}
	if s.super != nil {
		snap.SuperGame = s.super.View()
	}
	return snap
}

// cloneScores detaches ticket values so snapshots never alias session state.
func cloneScores(scores []models.TicketScore) []models.TicketScore {
	for i := range scores {
		scores[i].Ticket.Value = append([]string(nil), scores[i].Ticket.Value...)
	}
	return scores
}
