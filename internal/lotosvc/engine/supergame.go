package engine

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

var ErrCellOutOfRange = errors.New("cell index out of board range")

const (
	SuperInProgress = "in_progress"
	SuperFinished   = "finished"
)

// SuperGame is the bonus round played by the lottery winner against a hidden
// prize board. Bonus guesses are recomputed from revealed state on every read,
// so the ingestion cap grows as non-empty cells get revealed.
type SuperGame struct {
	Board     []string
	Revealed  map[int]bool
	Guess     *models.SuperGameGuess
	OwnerID   string
	OwnerName string

	baseGuesses  int
	bonusEnabled bool
	maxScore     int
}

// NewSuperGame generates the prize board: configured counts of x1/x2/x3 and
// custom reward cells placed uniformly at random without replacement, the
// rest empty.
func NewSuperGame(set models.Settings, ownerID, ownerName string) *SuperGame {
	board := make([]string, set.BoardSize)
	for i := range board {
		board[i] = models.ResultEmpty
	}

	var tagged []string
	for i := 0; i < set.X1Count; i++ {
		tagged = append(tagged, models.ResultX1)
	}
	for i := 0; i < set.X2Count; i++ {
		tagged = append(tagged, models.ResultX2)
	}
	for i := 0; i < set.X3Count; i++ {
		tagged = append(tagged, models.ResultX3)
	}
	for _, cr := range set.CustomRewards {
		for i := 0; i < cr.Count; i++ {
			tagged = append(tagged, cr.RewardID)
		}
	}

	positions := randPerm(set.BoardSize)
	for i, tag := range tagged {
		if i >= len(positions) {
			break
		}
		board[positions[i]] = tag
	}

	return &SuperGame{
		Board:        board,
		Revealed:     make(map[int]bool),
		OwnerID:      ownerID,
		OwnerName:    ownerName,
		baseGuesses:  set.BaseGuessCount,
		bonusEnabled: set.BonusGuessEnabled,
		maxScore:     set.X1Count*1 + set.X2Count*2 + set.X3Count*3,
	}
}

// BonusGuesses is the number of the winner's revealed guess cells holding a
// non-empty result, or 0 when the bonus is disabled.
func (g *SuperGame) BonusGuesses() int {
	if !g.bonusEnabled || g.Guess == nil {
		return 0
	}
	n := 0
	for _, c := range g.Guess.Cells {
		if g.Revealed[c] && g.Board[c] != models.ResultEmpty {
			n++
		}
	}
	return n
}

// Capacity is how many cells the winner may have chosen in total right now.
func (g *SuperGame) Capacity() int {
	return g.baseGuesses + g.BonusGuesses()
}

// IngestGuess parses a winner message with the super-game prefix: remaining
// tokens are 1-based cell indices, deduplicated, bounded to the board and to
// unrevealed cells, appended up to the remaining capacity. Non-winner
// messages and invalid tokens are ignored. Reports whether cells were added.
func (g *SuperGame) IngestGuess(msg models.ChatMessage) bool {
	if msg.User.ID != g.OwnerID {
		return false
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(strings.ToLower(text), SuperGamePrefix) {
		return false
	}
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return false
	}

	if g.Guess == nil {
		g.Guess = &models.SuperGameGuess{OwnerID: g.OwnerID, OwnerName: g.OwnerName}
	}

	chosen := make(map[int]bool, len(g.Guess.Cells))
	for _, c := range g.Guess.Cells {
		chosen[c] = true
	}

	added := false
	for _, tok := range tokens[1:] {
		if len(g.Guess.Cells) >= g.Capacity() {
			break
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(g.Board) {
			continue
		}
		if chosen[idx] || g.Revealed[idx] {
			continue
		}
		chosen[idx] = true
		g.Guess.Cells = append(g.Guess.Cells, idx)
		added = true
	}
	return added
}

// Reveal flips one board cell and returns its result.
func (g *SuperGame) Reveal(idx int) (string, error) {
	if idx < 0 || idx >= len(g.Board) {
		return "", ErrCellOutOfRange
	}
	g.Revealed[idx] = true
	return g.Board[idx], nil
}

func (g *SuperGame) revealedGuessCount() int {
	if g.Guess == nil {
		return 0
	}
	n := 0
	for _, c := range g.Guess.Cells {
		if g.Revealed[c] {
			n++
		}
	}
	return n
}

// Finished reports whether every chosen cell, bonus-earned ones included,
// has been revealed.
func (g *SuperGame) Finished() bool {
	if g.Guess == nil {
		return false
	}
	return g.revealedGuessCount() >= g.baseGuesses+g.BonusGuesses()
}

// Score sums the revealed guess results: x1=1, x2=2, x3=3, empty and custom
// reward cells score 0.
func (g *SuperGame) Score() int {
	if g.Guess == nil {
		return 0
	}
	score := 0
	for _, c := range g.Guess.Cells {
		if !g.Revealed[c] {
			continue
		}
		switch g.Board[c] {
		case models.ResultX1:
			score++
		case models.ResultX2:
			score += 2
		case models.ResultX3:
			score += 3
		}
	}
	return score
}

// TotalWin reports the perfect score: every prize on the board collected.
func (g *SuperGame) TotalWin() bool {
	return g.maxScore > 0 && g.Score() == g.maxScore
}

// Result is the winners-log signal: "win" once any revealed guess cell is
// non-empty, "lose" once every guess is revealed and all were empty, ""
// while still undetermined.
func (g *SuperGame) Result() string {
	if g.Guess != nil {
		for _, c := range g.Guess.Cells {
			if g.Revealed[c] && g.Board[c] != models.ResultEmpty {
				return "win"
			}
		}
	}
	if g.Finished() {
		return "lose"
	}
	return ""
}

// View builds the wire representation.
func (g *SuperGame) View() *models.SuperGameView {
	status := SuperInProgress
	if g.Finished() {
		status = SuperFinished
	}

	revealed := make([]models.RevealedCell, 0, len(g.Revealed))
	for idx := range g.Revealed {
		revealed = append(revealed, models.RevealedCell{Index: idx, Result: g.Board[idx]})
	}
	sort.Slice(revealed, func(i, j int) bool { return revealed[i].Index < revealed[j].Index })

	var guess *models.SuperGameGuess
	if g.Guess != nil {
		guess = &models.SuperGameGuess{
			OwnerID:   g.Guess.OwnerID,
			OwnerName: g.Guess.OwnerName,
			Cells:     append([]int(nil), g.Guess.Cells...),
		}
	}

	return &models.SuperGameView{
		Status:       status,
		OwnerID:      g.OwnerID,
		OwnerName:    g.OwnerName,
		Board:        append([]string(nil), g.Board...),
		Revealed:     revealed,
		Guess:        guess,
		BonusGuesses: g.BonusGuesses(),
		Capacity:     g.Capacity(),
		Score:        g.Score(),
		MaxScore:     g.maxScore,
		TotalWin:     g.TotalWin(),
		Result:       g.Result(),
	}
}
