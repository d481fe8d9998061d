package models

// ChatMessage is the normalized message every platform payload is converted to
// before it reaches the reconciler. Ts is unix seconds as reported upstream.
type ChatMessage struct {
	ID       string    `json:"id"`
	Text     string    `json:"message"`
	Ts       int64     `json:"ts"`
	User     Entrant   `json:"user"`
	Mentions []Entrant `json:"mentions,omitempty"`
}
