package engine

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

// randomness is package-swappable so tests can pin draws and placements
var (
	randIntn = rand.Intn
	randPerm = rand.Perm
)

var ticketColors = []string{
	"#e53935", "#8e24aa", "#3949ab", "#039be5",
	"#00897b", "#7cb342", "#fb8c00", "#f4511e",
}

const ticketVariants = 4

// FormatNumber renders a loto number the way it appears on tickets ("01".."99").
func FormatNumber(n int) string {
	return fmt.Sprintf("%02d", n)
}

// ParseNumbers extracts ticket numbers from free chat text: whitespace-split
// tokens that parse as integers within 1..max, deduplicated, zero-padded,
// in parse order. Everything else is silently dropped.
func ParseNumbers(text string, max int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n <= 0 || n > max {
			continue
		}
		v := FormatNumber(n)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// GenerateValue builds a ticket value of exactly size numbers: user-supplied
// numbers first (parse order, truncated at size), the rest filled with random
// undrawn pool numbers not already present. With no text it degrades to a
// pure random fill. Only numbers still in the pool snapshot are usable, so a
// ticket created mid-game cannot start with already-drawn matches.
func GenerateValue(text string, pool []string, size, max int) []string {
	undrawn := make(map[string]bool, len(pool))
	for _, v := range pool {
		undrawn[v] = true
	}

	var value []string
	for _, v := range ParseNumbers(text, max) {
		if !undrawn[v] {
			continue
		}
		value = append(value, v)
		if len(value) == size {
			break
		}
	}

	if len(value) >= size {
		return value
	}

	present := make(map[string]bool, len(value))
	for _, v := range value {
		present[v] = true
	}

	candidates := make([]string, 0, len(pool))
	for _, v := range pool {
		if !present[v] {
			candidates = append(candidates, v)
		}
	}

	for _, i := range randPerm(len(candidates)) {
		value = append(value, candidates[i])
		if len(value) == size {
			break
		}
	}

	return value
}

// NewTicket produces a complete ticket for one entrant. Never fails: with no
// usable text the value is a pure random fill from the pool snapshot.
func NewTicket(owner models.Entrant, text string, pool []string, set models.Settings, ttype models.TicketType, ts int64) models.Ticket {
	return models.Ticket{
		ID:        gonanoid.Must(),
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		Value:     GenerateValue(text, pool, set.TicketSize, set.PoolSize),
		Color:     ticketColors[randIntn(len(ticketColors))],
		Variant:   randIntn(ticketVariants),
		Type:      ttype,
		Platform:  owner.Platform,
		Channel:   owner.Channel,
		CreatedAt: ts,
	}
}
