package models

import "time"

// WinnerRecord is the locally cached copy of a winner reported to the
// loto_winners collaborator.
type WinnerRecord struct {
	ID              int64     `json:"id"`
	SessionID       int64     `json:"session_id"`
	Username        string    `json:"username"`
	SuperGameStatus string    `json:"super_game_status"` // "skip" | "win" | "lose"
	ReportedID      string    `json:"reported_id"`       // id assigned by the winners API
	CreatedAt       time.Time `json:"created_at"`
}

// Reward is one entry of a platform's reward catalog, used to populate custom
// super-game prize cells.
type Reward struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Platform string `json:"platform"`
	Cost     int    `json:"cost"`
}
