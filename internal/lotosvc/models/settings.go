package models

// CustomReward maps a platform reward to super-game board cells.
type CustomReward struct {
	RewardID string `json:"reward_id"`
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// Settings is the persisted game configuration. Everything is read at session
// start; WinThreshold is hot-reloadable and applies on the next evaluation.
type Settings struct {
	WinThreshold      int            `json:"win_threshold"`
	PoolSize          int            `json:"pool_size"` // 90 or 99
	TicketSize        int            `json:"ticket_size"`
	BoardSize         int            `json:"board_size"`
	X1Count           int            `json:"x1_count"`
	X2Count           int            `json:"x2_count"`
	X3Count           int            `json:"x3_count"`
	CustomRewards     []CustomReward `json:"custom_rewards,omitempty"`
	BonusGuessEnabled bool           `json:"bonus_guess_enabled"`
	BaseGuessCount    int            `json:"base_guess_count"`
	ManualDraw        bool           `json:"manual_draw"`
	DrawAnimationMs   int            `json:"draw_animation_ms"`
}

func DefaultSettings() Settings {
	return Settings{
		WinThreshold:      3,
		PoolSize:          90,
		TicketSize:        8,
		BoardSize:         30,
		X1Count:           3,
		X2Count:           2,
		X3Count:           1,
		BonusGuessEnabled: true,
		BaseGuessCount:    5,
		DrawAnimationMs:   4000,
	}
}

// WithDefaults fills zero-valued fields so a partially stored row still yields
// a playable configuration.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.WinThreshold <= 0 {
		s.WinThreshold = d.WinThreshold
	}
	if s.PoolSize != 90 && s.PoolSize != 99 {
		s.PoolSize = d.PoolSize
	}
	if s.TicketSize <= 0 {
		s.TicketSize = d.TicketSize
	}
	if s.BoardSize <= 0 {
		s.BoardSize = d.BoardSize
	}
	if s.BaseGuessCount <= 0 {
		s.BaseGuessCount = d.BaseGuessCount
	}
	if s.DrawAnimationMs <= 0 {
		s.DrawAnimationMs = d.DrawAnimationMs
	}
	return s
}
