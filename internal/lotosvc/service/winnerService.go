package service

import (
	"context"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
	"github.com/strmparty/loto-services/internal/lotosvc/store"
)

type WinnerService struct {
	winnerStore *store.WinnerStore
}

func NewWinnerService(winnerStore *store.WinnerStore) *WinnerService {
	return &WinnerService{winnerStore: winnerStore}
}

func (s *WinnerService) RecordWinner(ctx context.Context, sessionID int64, username, status, reportedID string) (int64, error) {
	return s.winnerStore.CreateWinner(ctx, sessionID, username, status, reportedID)
}

func (s *WinnerService) UpdateStatus(ctx context.Context, id int64, status string) error {
	return s.winnerStore.UpdateStatus(ctx, id, status)
}

func (s *WinnerService) Recent(ctx context.Context, limit int) ([]models.WinnerRecord, error) {
	return s.winnerStore.ListRecent(ctx, limit)
}
