package broker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/strmparty/loto-services/internal/comm"
	"github.com/strmparty/loto-services/internal/lotosvc/archive"
	"github.com/strmparty/loto-services/internal/lotosvc/engine"
	"github.com/strmparty/loto-services/internal/lotosvc/models"
	"github.com/strmparty/loto-services/internal/lotosvc/winners"
)

const publishTopic = "loto.service"

// SettingsProvider is the slice of the settings service the broker needs.
type SettingsProvider interface {
	GetOrDefault(ctx context.Context, server, channel string) (models.Settings, error)
	Save(ctx context.Context, server, channel string, set models.Settings) error
}

// SessionRecorder persists session rows and tickets.
type SessionRecorder interface {
	CreateSession(ctx context.Context, server, channel string, set models.Settings) (int64, error)
	MarkStarted(ctx context.Context, id int64) error
	MarkEnded(ctx context.Context, id int64, winnerName string) error
	SaveTicket(ctx context.Context, sessionID int64, t models.Ticket) error
	DeleteTicket(ctx context.Context, sessionID int64, ticketID string) error
}

// WinnerLog is the local winner record cache.
type WinnerLog interface {
	RecordWinner(ctx context.Context, sessionID int64, username, status, reportedID string) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Recent(ctx context.Context, limit int) ([]models.WinnerRecord, error)
}

// Broker owns the live game session and bridges it to the rest of the system:
// operator commands arrive over NATS from the socket service, chat batches
// arrive from the poller, and every state change goes back out as a snapshot.
type Broker struct {
	Conn *nats.Conn

	SettingsService SettingsProvider
	SessionService  SessionRecorder
	WinnerService   WinnerLog
	WinnersClient   *winners.Client
	Archive         *archive.Archive

	Server  string
	Channel string

	mu            sync.Mutex
	session       *engine.Session
	sessionID     int64
	started       bool
	rewardCatalog []models.Reward

	// winner bookkeeping for the current round
	winnerRowID    int64
	winnerRemoteID string
	winnerReported bool
	resultSynced   bool
}

func NewBroker(nc *nats.Conn, settingsService SettingsProvider,
	sessionService SessionRecorder, winnerService WinnerLog,
	winnersClient *winners.Client, arch *archive.Archive, server, channel string) *Broker {
	return &Broker{
		Conn:            nc,
		SettingsService: settingsService,
		SessionService:  sessionService,
		WinnerService:   winnerService,
		WinnersClient:   winnersClient,
		Archive:         arch,
		Server:          server,
		Channel:         channel,
	}
}

// SetRewardCatalog stores the platform reward catalog used to vet custom
// prize cells when a session starts.
func (b *Broker) SetRewardCatalog(rewards []models.Reward) {
	b.mu.Lock()
	b.rewardCatalog = rewards
	b.mu.Unlock()
}

// filterCustomRewards drops configured custom prize cells whose reward id is
// not in the platform catalog. An empty catalog means the platform did not
// report one; the configuration is trusted as stored.
func (b *Broker) filterCustomRewards(set models.Settings) models.Settings {
	b.mu.Lock()
	catalog := b.rewardCatalog
	b.mu.Unlock()

	if len(catalog) == 0 || len(set.CustomRewards) == 0 {
		return set
	}

	known := make(map[string]bool, len(catalog))
	for _, r := range catalog {
		known[r.ID] = true
	}

	kept := make([]models.CustomReward, 0, len(set.CustomRewards))
	for _, cr := range set.CustomRewards {
		if !known[cr.RewardID] {
			log.Warnf("dropping custom reward %s: not in the platform catalog", cr.RewardID)
			continue
		}
		kept = append(kept, cr)
	}
	set.CustomRewards = kept
	return set
}

// StartSession boots a session with the given settings and records it. Called
// from main on startup and from the new-game handler.
func (b *Broker) StartSession(ctx context.Context, set models.Settings) error {
	set = b.filterCustomRewards(set.WithDefaults())

	id, err := b.SessionService.CreateSession(ctx, b.Server, b.Channel, set)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.session = engine.NewSession(set)
	b.sessionID = id
	b.started = false
	b.winnerRowID = 0
	b.winnerRemoteID = ""
	b.winnerReported = false
	b.resultSynced = false
	b.mu.Unlock()

	log.Infof("loto session %d started for %s/%s", id, b.Server, b.Channel)
	return nil
}

// HandleChatBatch is the poller sink. It archives the batch, feeds it to the
// session and publishes a fresh snapshot when anything changed.
func (b *Broker) HandleChatBatch(batch []models.ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if b.Archive != nil {
		if err := b.Archive.StoreBatch(ctx, batch); err != nil {
			log.Errorf("Error archiving chat batch: %s", err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return
	}

	if !b.session.IngestMessages(batch) {
		return
	}

	b.persistTickets(ctx)
	b.publishSnapshot("")
}

// persistTickets upserts the session's current tickets. Caller holds the lock.
func (b *Broker) persistTickets(ctx context.Context) {
	snap := b.session.Snapshot()
	for _, s := range snap.ChatTickets {
		if err := b.SessionService.SaveTicket(ctx, b.sessionID, s.Ticket); err != nil {
			log.Errorf("Error [SessionService.SaveTicket] %s", err)
		}
	}
	for _, s := range snap.PointsTickets {
		if err := b.SessionService.SaveTicket(ctx, b.sessionID, s.Ticket); err != nil {
			log.Errorf("Error [SessionService.SaveTicket] %s", err)
		}
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "draw-number":
		b.handleDraw(msg.SocketId, "")
	case "manual-draw":
		var request comm.DrawRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding manual draw: %s", err)
			return
		}
		b.handleDraw(msg.SocketId, request.Number)
	case "reveal-cell":
		var request comm.RevealRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding reveal: %s", err)
			return
		}
		b.handleReveal(request.Cell, msg.SocketId)
	case "delete-ticket":
		var request comm.DeleteTicketRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding delete ticket: %s", err)
			return
		}
		b.handleDeleteTicket(request.TicketID, msg.SocketId)
	case "new-game":
		var request comm.NewGameRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding new game: %s", err)
			return
		}
		b.handleNewGame(request, msg.SocketId)
	case "update-settings":
		var set models.Settings
		if err := json.Unmarshal(msg.Data, &set); err != nil {
			log.Errorf("Error decoding settings: %s", err)
			return
		}
		b.handleUpdateSettings(set, msg.SocketId)
	case "set-win-threshold":
		var request comm.ThresholdRequest
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding threshold: %s", err)
			return
		}
		b.mu.Lock()
		if b.session != nil {
			b.session.SetWinThreshold(request.WinThreshold)
			b.publishSnapshot("")
		}
		b.mu.Unlock()
	case "get-snapshot":
		b.mu.Lock()
		if b.session != nil {
			b.publishSnapshot(msg.SocketId)
		}
		b.mu.Unlock()
	case "get-winner-log":
		b.handleWinnerLog(msg.SocketId)
	default:
		log.Errorf("Unknown message type %s", msg.Type)
	}
}

func (b *Broker) handleDraw(socketId, manual string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		b.PublishError("no active session", socketId)
		return
	}

	var number string
	var err error
	if manual != "" {
		err = b.session.DrawManual(manual)
		number = manual
	} else {
		number, err = b.session.DrawNext()
	}
	if err != nil {
		log.Errorf("Error drawing number: %s", err)
		b.PublishError(err.Error(), socketId)
		return
	}

	// the first committed draw ends registration
	if !b.started {
		b.started = true
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := b.SessionService.MarkStarted(ctx, b.sessionID); err != nil {
			log.Errorf("Error [SessionService.MarkStarted] %s", err)
		}
		cancel()
	}

	b.PublishDraw(comm.DrawData{
		Number:   number,
		Drawn:    b.session.Drawn(),
		PoolLeft: b.session.Snapshot().PoolLeft,
	})

	if b.session.Phase() == engine.PhaseSuperGame && !b.winnerReported {
		b.reportWinner()
	}

	b.publishSnapshot("")
}

// reportWinner pushes the round winner to the external registry and mirrors
// the record locally. Caller holds the lock.
func (b *Broker) reportWinner() {
	winner := b.session.Winner()
	if winner == nil {
		return
	}
	b.winnerReported = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	remoteID := ""
	if b.WinnersClient != nil {
		ids, err := b.WinnersClient.Report(ctx, b.Server, b.Channel, []winners.ReportedWinner{
			{Username: winner.Ticket.OwnerName, SuperGameStatus: "skip"},
		})
		if err != nil {
			log.Errorf("Error reporting winner: %s", err)
		} else {
			remoteID = ids[winner.Ticket.OwnerName]
		}
	}
	b.winnerRemoteID = remoteID

	rowID, err := b.WinnerService.RecordWinner(ctx, b.sessionID, winner.Ticket.OwnerName, "skip", remoteID)
	if err != nil {
		log.Errorf("Error [WinnerService.RecordWinner] %s", err)
	}
	b.winnerRowID = rowID

	if err := b.SessionService.MarkEnded(ctx, b.sessionID, winner.Ticket.OwnerName); err != nil {
		log.Errorf("Error [SessionService.MarkEnded] %s", err)
	}

	b.PublishWinner(comm.WinnerData{
		Winner: *winner,
		Drawn:  b.session.Drawn(),
	})
}

func (b *Broker) handleReveal(cell int, socketId string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		b.PublishError("no active session", socketId)
		return
	}

	if _, err := b.session.RevealCell(cell); err != nil {
		log.Errorf("Error revealing cell %d: %s", cell, err)
		b.PublishError(err.Error(), socketId)
		return
	}

	if super := b.session.SuperGame(); super != nil {
		b.publish("super-game-update", super.View(), "")
	}

	b.syncSuperGameResult()
	b.publishSnapshot("")
}

// syncSuperGameResult pushes a decided super game outcome to the winner
// registry once. Caller holds the lock.
func (b *Broker) syncSuperGameResult() {
	if b.resultSynced {
		return
	}
	super := b.session.SuperGame()
	if super == nil {
		return
	}
	result := super.Result()
	if result == "" {
		return
	}
	if result == "lose" && b.session.Phase() != engine.PhaseFinished {
		return
	}
	b.resultSynced = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if b.winnerRowID != 0 {
		if err := b.WinnerService.UpdateStatus(ctx, b.winnerRowID, result); err != nil {
			log.Errorf("Error [WinnerService.UpdateStatus] %s", err)
		}
	}
	if b.WinnersClient != nil && b.winnerRemoteID != "" {
		if err := b.WinnersClient.UpdateStatus(ctx, b.winnerRemoteID, b.Server, b.Channel, result); err != nil {
			log.Errorf("Error updating winner registry: %s", err)
		}
	}
}

func (b *Broker) handleDeleteTicket(ticketID, socketId string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		b.PublishError("no active session", socketId)
		return
	}

	if !b.session.DeleteTicket(ticketID) {
		b.PublishError("ticket not found", socketId)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.SessionService.DeleteTicket(ctx, b.sessionID, ticketID); err != nil {
		log.Errorf("Error [SessionService.DeleteTicket] %s", err)
	}

	b.publishSnapshot("")
}

func (b *Broker) handleNewGame(request comm.NewGameRequest, socketId string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var set models.Settings
	if request.Settings != nil {
		set = request.Settings.WithDefaults()
		if err := b.SettingsService.Save(ctx, b.Server, b.Channel, set); err != nil {
			log.Errorf("Error [SettingsService.Save] %s", err)
		}
	} else {
		var err error
		set, err = b.SettingsService.GetOrDefault(ctx, b.Server, b.Channel)
		if err != nil {
			log.Errorf("Error [SettingsService.GetOrDefault] %s", err)
			set = models.DefaultSettings()
		}
	}

	if err := b.StartSession(ctx, set); err != nil {
		log.Errorf("Error starting session: %s", err)
		b.PublishError(err.Error(), socketId)
		return
	}

	b.mu.Lock()
	b.publishSnapshot("")
	b.mu.Unlock()
}

// handleUpdateSettings persists the new configuration and resets the game
// with it. A config change always discards drawn numbers, tickets and any
// super game in progress.
func (b *Broker) handleUpdateSettings(set models.Settings, socketId string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	set = set.WithDefaults()
	if err := b.SettingsService.Save(ctx, b.Server, b.Channel, set); err != nil {
		log.Errorf("Error [SettingsService.Save] %s", err)
		b.PublishError(err.Error(), socketId)
		return
	}

	if err := b.StartSession(ctx, set); err != nil {
		log.Errorf("Error restarting session: %s", err)
		b.PublishError(err.Error(), socketId)
		return
	}

	b.PublishRes(comm.Res{Status: true}, socketId)

	b.mu.Lock()
	b.publishSnapshot("")
	b.mu.Unlock()
}

func (b *Broker) handleWinnerLog(socketId string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := b.WinnerService.Recent(ctx, 50)
	if err != nil {
		log.Errorf("Error [WinnerService.Recent] %s", err)
		b.PublishError(err.Error(), socketId)
		return
	}

	b.publish("winner-log", comm.WinnerLogData{Winners: records}, socketId)
}

// publishSnapshot emits the full session view. Empty socketId broadcasts to
// every connected client. Caller holds the lock.
func (b *Broker) publishSnapshot(socketId string) {
	b.publish("loto-snapshot", b.session.Snapshot(), socketId)
}

func (b *Broker) PublishDraw(d comm.DrawData) {
	b.publish("loto-draw", d, "")
}

func (b *Broker) PublishWinner(w comm.WinnerData) {
	b.publish("loto-winner", w, "")
}

func (b *Broker) PublishRes(r comm.Res, socketId string) {
	b.publish("loto-res", r, socketId)
}

func (b *Broker) PublishError(message, socketId string) {
	b.publish("loto-res", comm.Res{Status: false, Error: message}, socketId)
}

func (b *Broker) publish(msgType string, v interface{}, socketId string) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("unable to marshal %s payload: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(publishTopic, payload)
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	if b.Conn == nil {
		return nil
	}

	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
