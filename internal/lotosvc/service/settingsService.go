package service

import (
	"context"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
	"github.com/strmparty/loto-services/internal/lotosvc/store"
)

type SettingsService struct {
	settingsStore *store.SettingsStore
}

func NewSettingsService(settingsStore *store.SettingsStore) *SettingsService {
	return &SettingsService{settingsStore: settingsStore}
}

// GetOrDefault loads the stored configuration for a channel, falling back to
// the defaults when none is stored yet.
func (s *SettingsService) GetOrDefault(ctx context.Context, server, channel string) (models.Settings, error) {
	set, err := s.settingsStore.GetSettings(ctx, server, channel)
	if err != nil {
		return models.Settings{}, err
	}
	if set == nil {
		return models.DefaultSettings(), nil
	}
	return set.WithDefaults(), nil
}

func (s *SettingsService) Save(ctx context.Context, server, channel string, set models.Settings) error {
	return s.settingsStore.SaveSettings(ctx, server, channel, set.WithDefaults())
}
