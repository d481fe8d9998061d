package models

type TicketType string

const (
	TicketChat   TicketType = "chat"
	TicketPoints TicketType = "points"
)

// Ticket is one participant's set of numbers for the current round. Value is
// fixed at creation; a re-registration during the registration phase replaces
// the whole ticket, individual slots are never rewritten.
type Ticket struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	OwnerName string     `json:"owner_name"`
	Value     []string   `json:"value"` // two-digit number strings, generation order
	Color     string     `json:"color"`
	Variant   int        `json:"variant"`
	Type      TicketType `json:"type"`
	Platform  string     `json:"platform"`
	Channel   string     `json:"channel"`
	CreatedAt int64      `json:"created_at"` // ts of the message that produced the ticket
}

// TicketScore is a ticket plus the evaluator's verdict for the current drawn
// sequence.
type TicketScore struct {
	Ticket       Ticket `json:"ticket"`
	MinNeeded    int    `json:"min_needed"`
	TotalMatches int    `json:"total_matches"`
}
