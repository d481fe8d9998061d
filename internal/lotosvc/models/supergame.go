package models

// Super-game board cell results. Any other value is a platform reward id from
// the custom reward configuration.
const (
	ResultEmpty = "empty"
	ResultX1    = "x1"
	ResultX2    = "x2"
	ResultX3    = "x3"
)

// SuperGameGuess holds the cell indices the winner has chosen so far, in the
// order they were accepted. Appended to until the capacity is reached.
type SuperGameGuess struct {
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_name"`
	Cells     []int  `json:"cells"`
}

type RevealedCell struct {
	Index  int    `json:"index"`
	Result string `json:"result"`
}

// SuperGameView is the wire representation of the bonus round state.
type SuperGameView struct {
	Status       string          `json:"status"`
	OwnerID      string          `json:"owner_id"`
	OwnerName    string          `json:"owner_name"`
	Board        []string        `json:"board"`
	Revealed     []RevealedCell  `json:"revealed"`
	Guess        *SuperGameGuess `json:"guess,omitempty"`
	BonusGuesses int             `json:"bonus_guesses"`
	Capacity     int             `json:"capacity"`
	Score        int             `json:"score"`
	MaxScore     int             `json:"max_score"`
	TotalWin     bool            `json:"total_win"`
	Result       string          `json:"result,omitempty"` // "win" | "lose" | ""
}
