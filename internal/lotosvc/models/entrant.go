package models

// Entrant is a chat user known to the session. Metadata is merged in from
// newer messages, entrants are never removed while a session is running.
type Entrant struct {
	ID       string   `json:"id"`
	Name     string   `json:"username"`
	Platform string   `json:"platform"`
	Channel  string   `json:"channel"`
	Badges   []string `json:"badges,omitempty"`
	Color    string   `json:"color,omitempty"`
	Nickname string   `json:"nickname,omitempty"`
}
