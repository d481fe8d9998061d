package engine

import (
	"sort"
	"strings"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

// User-facing trigger keywords. Literal by design, they are part of the game's
// chat protocol.
const (
	TriggerKeyword  = "лото"
	SuperGamePrefix = "+супер"
	BotName         = "ChatBot"
)

// Reconciler turns polled chat batches into ticket creations and refreshes
// for the two entrant pools. Duplicates across polls are tolerated: a message
// not newer than the owner's ticket is a no-op.
type Reconciler struct {
	Keyword string
	Bot     string
}

func NewReconciler() *Reconciler {
	return &Reconciler{Keyword: TriggerKeyword, Bot: BotName}
}

type ownedMessage struct {
	Owner models.Entrant
	Msg   models.ChatMessage
}

// filterChannel keeps the messages feeding one entrant pool. The bot relay
// account is excluded from the chat channel and is the only source of the
// points channel, where the real owner comes from the mention field.
func (r *Reconciler) filterChannel(batch []models.ChatMessage, ttype models.TicketType) []ownedMessage {
	var out []ownedMessage
	keyword := strings.ToLower(r.Keyword)
	for _, m := range batch {
		if !strings.Contains(strings.ToLower(m.Text), keyword) {
			continue
		}
		fromBot := m.User.Name == r.Bot
		switch ttype {
		case models.TicketChat:
			if fromBot {
				continue
			}
			out = append(out, ownedMessage{Owner: m.User, Msg: m})
		case models.TicketPoints:
			if !fromBot || len(m.Mentions) == 0 {
				continue
			}
			out = append(out, ownedMessage{Owner: m.Mentions[0], Msg: m})
		}
	}
	return out
}

// Apply ingests one poll batch for a single entrant pool and returns the new
// ticket list plus whether anything changed. New tickets are prepended
// (most-recent-first); during the registration phase a newer message from an
// existing owner replaces that owner's ticket wholesale. The input slice is
// never mutated.
func (r *Reconciler) Apply(tickets []models.Ticket, batch []models.ChatMessage, ttype models.TicketType,
	pool []string, set models.Settings, registration bool) ([]models.Ticket, bool) {

	msgs := r.filterChannel(batch, ttype)
	if len(msgs) == 0 {
		return tickets, false
	}

	// ascending timestamp order so "most recent wins" dedup is correct
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Msg.Ts < msgs[j].Msg.Ts
	})

	latest := make(map[string]ownedMessage, len(msgs))
	var order []string
	for _, om := range msgs {
		if _, ok := latest[om.Owner.ID]; !ok {
			order = append(order, om.Owner.ID)
		}
		latest[om.Owner.ID] = om
	}

	out := append([]models.Ticket(nil), tickets...)
	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.OwnerID] = i
	}

	changed := false
	for _, ownerID := range order {
		om := latest[ownerID]
		if i, ok := index[ownerID]; ok {
			// one live ticket per owner; refresh only before the draw starts
			if registration && om.Msg.Ts > out[i].CreatedAt {
				out[i] = NewTicket(om.Owner, om.Msg.Text, pool, set, ttype, om.Msg.Ts)
				changed = true
			}
			continue
		}
		t := NewTicket(om.Owner, om.Msg.Text, pool, set, ttype, om.Msg.Ts)
		out = append([]models.Ticket{t}, out...)
		for k := range index {
			index[k]++
		}
		index[ownerID] = 0
		changed = true
	}

	if !changed {
		return tickets, false
	}
	return out, true
}

// UpdateEntrants merges metadata from a batch into the known entrant set.
// Existing entrants are updated field by field, never replaced or removed.
func UpdateEntrants(known map[string]models.Entrant, batch []models.ChatMessage) {
	for _, m := range batch {
		mergeEntrant(known, m.User)
		for _, e := range m.Mentions {
			mergeEntrant(known, e)
		}
	}
}

func mergeEntrant(known map[string]models.Entrant, e models.Entrant) {
	if e.ID == "" {
		return
	}
	cur, ok := known[e.ID]
	if !ok {
		known[e.ID] = e
		return
	}
	if e.Name != "" {
		cur.Name = e.Name
	}
	if e.Platform != "" {
		cur.Platform = e.Platform
	}
	if e.Channel != "" {
		cur.Channel = e.Channel
	}
	if len(e.Badges) > 0 {
		cur.Badges = e.Badges
	}
	if e.Color != "" {
		cur.Color = e.Color
	}
	if e.Nickname != "" {
		cur.Nickname = e.Nickname
	}
	known[e.ID] = cur
}
