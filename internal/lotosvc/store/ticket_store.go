package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

type TicketStore struct {
	db *pgxpool.Pool
}

func NewTicketStore(db *pgxpool.Pool) *TicketStore {
	return &TicketStore{db: db}
}

// CreateTicket writes one ticket row. The value is stored as a comma-joined
// string; re-registrations replace the owner's previous row for the channel.
func (s *TicketStore) CreateTicket(ctx context.Context, sessionID int64, t models.Ticket) error {
	query := `
		INSERT INTO tickets (id, session_id, owner_id, owner_name, ttype, value,
		                     color, variant, platform, channel, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, owner_id, ttype) DO UPDATE SET
			id = EXCLUDED.id,
			value = EXCLUDED.value,
			color = EXCLUDED.color,
			variant = EXCLUDED.variant,
			created_ts = EXCLUDED.created_ts
	`

	_, err := s.db.Exec(ctx, query,
		t.ID, sessionID, t.OwnerID, t.OwnerName, string(t.Type), strings.Join(t.Value, ","),
		t.Color, t.Variant, t.Platform, t.Channel, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

func (s *TicketStore) DeleteTicket(ctx context.Context, sessionID int64, ticketID string) error {
	query := `DELETE FROM tickets WHERE session_id = $1 AND id = $2`

	_, err := s.db.Exec(ctx, query, sessionID, ticketID)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	return nil
}

// ListBySession returns all tickets of a session, newest first.
func (s *TicketStore) ListBySession(ctx context.Context, sessionID int64) ([]models.Ticket, error) {
	query := `
		SELECT id, owner_id, owner_name, ttype, value,
		       color, variant, platform, channel, created_ts
		FROM tickets
		WHERE session_id = $1
		ORDER BY created_ts DESC
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		var ttype, value string
		err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.OwnerName,
			&ttype,
			&value,
			&t.Color,
			&t.Variant,
			&t.Platform,
			&t.Channel,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		t.Type = models.TicketType(ttype)
		if value != "" {
			t.Value = strings.Split(value, ",")
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tickets: %w", err)
	}

	return tickets, nil
}
