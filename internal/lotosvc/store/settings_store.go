package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

type SettingsStore struct {
	db *pgxpool.Pool
}

func NewSettingsStore(db *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{db: db}
}

// GetSettings loads the game configuration for one channel. Returns nil, nil
// when nothing is stored yet.
func (s *SettingsStore) GetSettings(ctx context.Context, server, channel string) (*models.Settings, error) {
	query := `
		SELECT win_threshold, pool_size, ticket_size, board_size,
		       x1_count, x2_count, x3_count, custom_rewards,
		       bonus_guess_enabled, base_guess_count, manual_draw, draw_animation_ms
		FROM loto_settings
		WHERE server = $1 AND channel = $2
	`

	set := &models.Settings{}
	var rewards []byte
	err := s.db.QueryRow(ctx, query, server, channel).Scan(
		&set.WinThreshold,
		&set.PoolSize,
		&set.TicketSize,
		&set.BoardSize,
		&set.X1Count,
		&set.X2Count,
		&set.X3Count,
		&rewards,
		&set.BonusGuessEnabled,
		&set.BaseGuessCount,
		&set.ManualDraw,
		&set.DrawAnimationMs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no stored settings for this channel
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if len(rewards) > 0 {
		if err := json.Unmarshal(rewards, &set.CustomRewards); err != nil {
			return nil, fmt.Errorf("failed to decode custom rewards: %w", err)
		}
	}

	return set, nil
}

// SaveSettings upserts the configuration for one channel.
func (s *SettingsStore) SaveSettings(ctx context.Context, server, channel string, set models.Settings) error {
	rewards, err := json.Marshal(set.CustomRewards)
	if err != nil {
		return fmt.Errorf("failed to encode custom rewards: %w", err)
	}

	query := `
		INSERT INTO loto_settings (
			server, channel, win_threshold, pool_size, ticket_size, board_size,
			x1_count, x2_count, x3_count, custom_rewards,
			bonus_guess_enabled, base_guess_count, manual_draw, draw_animation_ms, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		ON CONFLICT (server, channel) DO UPDATE SET
			win_threshold = EXCLUDED.win_threshold,
			pool_size = EXCLUDED.pool_size,
			ticket_size = EXCLUDED.ticket_size,
			board_size = EXCLUDED.board_size,
			x1_count = EXCLUDED.x1_count,
			x2_count = EXCLUDED.x2_count,
			x3_count = EXCLUDED.x3_count,
			custom_rewards = EXCLUDED.custom_rewards,
			bonus_guess_enabled = EXCLUDED.bonus_guess_enabled,
			base_guess_count = EXCLUDED.base_guess_count,
			manual_draw = EXCLUDED.manual_draw,
			draw_animation_ms = EXCLUDED.draw_animation_ms,
			updated_at = now()
	`

	_, err = s.db.Exec(ctx, query,
		server, channel, set.WinThreshold, set.PoolSize, set.TicketSize, set.BoardSize,
		set.X1Count, set.X2Count, set.X3Count, rewards,
		set.BonusGuessEnabled, set.BaseGuessCount, set.ManualDraw, set.DrawAnimationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
