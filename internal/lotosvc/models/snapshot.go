package models

// SessionSnapshot is the immutable view published after every poll tick and
// operator action. The presentation layer renders from this alone.
type SessionSnapshot struct {
	Phase         string         `json:"phase"`
	Settings      Settings       `json:"settings"`
	ChatTickets   []TicketScore  `json:"chat_tickets"`
	PointsTickets []TicketScore  `json:"points_tickets"`
	Drawn         []string       `json:"drawn"`
	PoolLeft      int            `json:"pool_left"`
	Winner        *TicketScore   `json:"winner,omitempty"`
	SuperGame     *SuperGameView `json:"super_game,omitempty"`
}
