package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

type WinnerStore struct {
	db *pgxpool.Pool
}

func NewWinnerStore(db *pgxpool.Pool) *WinnerStore {
	return &WinnerStore{db: db}
}

func (s *WinnerStore) CreateWinner(ctx context.Context, sessionID int64, username, status, reportedID string) (int64, error) {
	query := `
		INSERT INTO winner_log (session_id, username, super_game_status, reported_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(ctx, query, sessionID, username, status, reportedID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create winner record: %w", err)
	}

	return id, nil
}

func (s *WinnerStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE winner_log SET super_game_status = $1 WHERE id = $2`

	_, err := s.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update winner status: %w", err)
	}

	return nil
}

// ListRecent returns the latest winner records, newest first.
func (s *WinnerStore) ListRecent(ctx context.Context, limit int) ([]models.WinnerRecord, error) {
	query := `
		SELECT id, session_id, username, super_game_status, COALESCE(reported_id, ''), created_at
		FROM winner_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	defer rows.Close()

	var winners []models.WinnerRecord
	for rows.Next() {
		var w models.WinnerRecord
		err := rows.Scan(&w.ID, &w.SessionID, &w.Username, &w.SuperGameStatus, &w.ReportedID, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner record: %w", err)
		}
		winners = append(winners, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read winners: %w", err)
	}

	return winners, nil
}
