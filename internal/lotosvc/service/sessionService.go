package service

import (
	"context"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
	"github.com/strmparty/loto-services/internal/lotosvc/store"
)

type SessionService struct {
	sessionStore *store.SessionStore
	ticketStore  *store.TicketStore
}

func NewSessionService(sessionStore *store.SessionStore, ticketStore *store.TicketStore) *SessionService {
	return &SessionService{sessionStore: sessionStore, ticketStore: ticketStore}
}

func (s *SessionService) CreateSession(ctx context.Context, server, channel string, set models.Settings) (int64, error) {
	return s.sessionStore.CreateSession(ctx, server, channel, set.WinThreshold, set.PoolSize)
}

func (s *SessionService) MarkStarted(ctx context.Context, id int64) error {
	return s.sessionStore.UpdateStatus(ctx, id, "started")
}

func (s *SessionService) MarkEnded(ctx context.Context, id int64, winnerName string) error {
	if winnerName != "" {
		if err := s.sessionStore.SetWinner(ctx, id, winnerName); err != nil {
			return err
		}
	}
	return s.sessionStore.UpdateStatus(ctx, id, "ended")
}

func (s *SessionService) GetActiveSession(ctx context.Context, server, channel string) (*store.SessionRow, error) {
	return s.sessionStore.GetActiveSession(ctx, server, channel)
}

func (s *SessionService) SaveTicket(ctx context.Context, sessionID int64, t models.Ticket) error {
	return s.ticketStore.CreateTicket(ctx, sessionID, t)
}

func (s *SessionService) DeleteTicket(ctx context.Context, sessionID int64, ticketID string) error {
	return s.ticketStore.DeleteTicket(ctx, sessionID, ticketID)
}

func (s *SessionService) SessionTickets(ctx context.Context, sessionID int64) ([]models.Ticket, error) {
	return s.ticketStore.ListBySession(ctx, sessionID)
}
