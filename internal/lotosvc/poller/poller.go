package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

const (
	// DefaultInterval is how often each channel connection is polled.
	DefaultInterval = 2 * time.Second

	// cursorLagSeconds is subtracted from the newest seen timestamp before it
	// becomes the next poll cursor. The chat gateway delivers messages slightly
	// out of order, so we re-read a short tail and rely on the reconciler being
	// idempotent.
	cursorLagSeconds = 5
)

// Sink receives every non-empty poll batch, ordered as returned by the gateway.
type Sink interface {
	HandleChatBatch(batch []models.ChatMessage)
}

// Connection identifies one chat stream to follow.
type Connection struct {
	Platform string
	Channel  string
}

// Poller follows chat gateway streams and feeds normalized batches to a Sink.
type Poller struct {
	baseURL  string
	client   *http.Client
	sink     Sink
	interval time.Duration

	cursors map[Connection]int64
}

type chatMessagesResponse struct {
	ChatMessages []models.ChatMessage `json:"chat_messages"`
}

type streamInfoResponse struct {
	Rewards []models.Reward `json:"rewards"`
}

func New(baseURL string, sink Sink) *Poller {
	return &Poller{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		sink:     sink,
		interval: DefaultInterval,
		cursors:  make(map[Connection]int64),
	}
}

// Connect registers interest in a channel with the chat gateway and starts the
// poll cursor at the current moment.
func (p *Poller) Connect(ctx context.Context, conn Connection) error {
	body, err := json.Marshal(map[string]string{
		"platform": conn.Platform,
		"channel":  conn.Channel,
	})
	if err != nil {
		return fmt.Errorf("failed to encode connect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat_connect", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build connect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect chat %s/%s: %w", conn.Platform, conn.Channel, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat connect %s/%s returned status %d", conn.Platform, conn.Channel, resp.StatusCode)
	}

	if _, ok := p.cursors[conn]; !ok {
		p.cursors[conn] = time.Now().Unix()
	}

	return nil
}

// StreamInfo fetches the channel's reward catalog from the gateway.
func (p *Poller) StreamInfo(ctx context.Context, conn Connection) ([]models.Reward, error) {
	q := url.Values{}
	q.Set("platform", conn.Platform)
	q.Set("channel", conn.Channel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/stream_info?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream info request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stream info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stream info returned status %d", resp.StatusCode)
	}

	var info streamInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode stream info: %w", err)
	}

	return info.Rewards, nil
}

// PollOnce fetches everything newer than the connection's cursor and hands it
// to the sink. The cursor only ever moves forward.
func (p *Poller) PollOnce(ctx context.Context, conn Connection) error {
	cursor := p.cursors[conn]

	q := url.Values{}
	q.Set("platform", conn.Platform)
	q.Set("channel", conn.Channel)
	q.Set("ts", strconv.FormatInt(cursor, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/chat_messages?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build poll request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to poll chat %s/%s: %w", conn.Platform, conn.Channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat poll %s/%s returned status %d", conn.Platform, conn.Channel, resp.StatusCode)
	}

	var payload chatMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode chat messages: %w", err)
	}

	if len(payload.ChatMessages) == 0 {
		return nil
	}

	var lastTs int64
	for i := range payload.ChatMessages {
		m := &payload.ChatMessages[i]
		m.User.Platform = conn.Platform
		m.User.Channel = conn.Channel
		if m.Ts > lastTs {
			lastTs = m.Ts
		}
	}

	if next := lastTs - cursorLagSeconds; next > cursor {
		p.cursors[conn] = next
	}

	p.sink.HandleChatBatch(payload.ChatMessages)

	return nil
}

// Run polls the connection until the context is canceled.
func (p *Poller) Run(ctx context.Context, conn Connection) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("chat poller for %s/%s stopped", conn.Platform, conn.Channel)
			return
		case <-ticker.C:
			if err := p.PollOnce(ctx, conn); err != nil {
				log.Errorf("chat poll failed: %v", err)
			}
		}
	}
}

// Cursor exposes the current poll position, used when persisting state.
func (p *Poller) Cursor(conn Connection) int64 {
	return p.cursors[conn]
}

// SetCursor seeds the poll position, e.g. when resuming a session.
func (p *Poller) SetCursor(conn Connection, ts int64) {
	p.cursors[conn] = ts
}
