package engine

import (
	"sort"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

// DrawnSet builds the membership lookup for a drawn sequence.
func DrawnSet(drawn []string) map[string]bool {
	set := make(map[string]bool, len(drawn))
	for _, n := range drawn {
		set[n] = true
	}
	return set
}

// EvaluateTicket computes how many additional matches the ticket still needs
// inside some window of k consecutive slots, plus its total match count. The
// window slides over the ticket's own fixed slot order, not draw order.
// Before any number is drawn the result is the defined initial state (k, 0).
func EvaluateTicket(t models.Ticket, drawn map[string]bool, k int) (minNeeded, totalMatches int) {
	if len(drawn) == 0 {
		return k, 0
	}

	m := make([]int, len(t.Value))
	for i, v := range t.Value {
		if drawn[v] {
			m[i] = 1
			totalMatches++
		}
	}

	if k > len(m) {
		return k - totalMatches, totalMatches
	}

	windowSum := 0
	for i := 0; i < k; i++ {
		windowSum += m[i]
	}
	minNeeded = k - windowSum
	for i := k; i < len(m); i++ {
		windowSum += m[i] - m[i-k]
		if k-windowSum < minNeeded {
			minNeeded = k - windowSum
		}
	}
	return minNeeded, totalMatches
}

// ScoreLess is the deterministic ordering used for display and winner
// selection: ascending minNeeded, then descending totalMatches, then earliest
// created_at.
func ScoreLess(a, b models.TicketScore) bool {
	if a.MinNeeded != b.MinNeeded {
		return a.MinNeeded < b.MinNeeded
	}
	if a.TotalMatches != b.TotalMatches {
		return a.TotalMatches > b.TotalMatches
	}
	return a.Ticket.CreatedAt < b.Ticket.CreatedAt
}

// Evaluate scores every ticket against the drawn sequence and returns them
// ordered closest-to-winning first. Pure: inputs are never mutated.
func Evaluate(tickets []models.Ticket, drawn []string, k int) []models.TicketScore {
	set := DrawnSet(drawn)
	scores := make([]models.TicketScore, 0, len(tickets))
	for _, t := range tickets {
		minNeeded, totalMatches := EvaluateTicket(t, set, k)
		scores = append(scores, models.TicketScore{
			Ticket:       t,
			MinNeeded:    minNeeded,
			TotalMatches: totalMatches,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return ScoreLess(scores[i], scores[j])
	})
	return scores
}

// PickWinner returns the best-ranked ticket and whether it has actually won
// (some k-wide window fully matched).
func PickWinner(scores []models.TicketScore) (models.TicketScore, bool) {
	if len(scores) == 0 {
		return models.TicketScore{}, false
	}
	best := scores[0]
	return best, best.MinNeeded <= 0
}
