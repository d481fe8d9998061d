package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRow mirrors the sessions table: one row per game round.
type SessionRow struct {
	ID           int64     `json:"id"`
	Server       string    `json:"server"`
	Channel      string    `json:"channel"`
	Status       string    `json:"status"` // 'waiting', 'started', 'ended'
	WinThreshold int       `json:"win_threshold"`
	PoolSize     int       `json:"pool_size"`
	WinnerName   string    `json:"winner_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(ctx context.Context, server, channel string, winThreshold, poolSize int) (int64, error) {
	query := `
		INSERT INTO sessions (server, channel, status, win_threshold, pool_size)
		VALUES ($1, $2, 'waiting', $3, $4)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(ctx, query, server, channel, winThreshold, poolSize).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}

	return id, nil
}

func (s *SessionStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE sessions SET status = $1, updated_at = now() WHERE id = $2`

	_, err := s.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	return nil
}

func (s *SessionStore) SetWinner(ctx context.Context, id int64, winnerName string) error {
	query := `UPDATE sessions SET winner_name = $1, updated_at = now() WHERE id = $2`

	_, err := s.db.Exec(ctx, query, winnerName, id)
	if err != nil {
		return fmt.Errorf("failed to set session winner: %w", err)
	}

	return nil
}

// GetActiveSession returns the newest not-ended session for a channel, or
// nil, nil when there is none.
func (s *SessionStore) GetActiveSession(ctx context.Context, server, channel string) (*SessionRow, error) {
	query := `
		SELECT id, server, channel, status, win_threshold, pool_size,
		       COALESCE(winner_name, ''), created_at, updated_at
		FROM sessions
		WHERE server = $1 AND channel = $2 AND status != 'ended'
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := &SessionRow{}
	err := s.db.QueryRow(ctx, query, server, channel).Scan(
		&row.ID,
		&row.Server,
		&row.Channel,
		&row.Status,
		&row.WinThreshold,
		&row.PoolSize,
		&row.WinnerName,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no active session
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	return row, nil
}
