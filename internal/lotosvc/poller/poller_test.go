package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

type captureSink struct {
	batches [][]models.ChatMessage
}

func (c *captureSink) HandleChatBatch(batch []models.ChatMessage) {
	c.batches = append(c.batches, batch)
}

func chatServer(t *testing.T, messages []models.ChatMessage, gotTs *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat_messages":
			if gotTs != nil {
				*gotTs = r.URL.Query().Get("ts")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"chat_messages": messages})
		case "/chat_connect":
			w.WriteHeader(http.StatusOK)
		case "/stream_info":
			json.NewEncoder(w).Encode(map[string]interface{}{"rewards": []models.Reward{
				{ID: "r1", Title: "hydrate", Platform: "twitch", Cost: 500},
			}})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestPollOnce_DeliversBatchAndStampsConnection(t *testing.T) {
	messages := []models.ChatMessage{
		{ID: "m1", Text: "лото 1 2 3", Ts: 100, User: models.Entrant{ID: "u1", Name: "alice"}},
		{ID: "m2", Text: "лото 4 5 6", Ts: 110, User: models.Entrant{ID: "u2", Name: "bob"}},
	}
	srv := chatServer(t, messages, nil)
	defer srv.Close()

	sink := &captureSink{}
	p := New(srv.URL, sink)
	conn := Connection{Platform: "twitch", Channel: "streamer"}

	if err := p.PollOnce(context.Background(), conn); err != nil {
		t.Fatalf("unexpected poll error: %v", err)
	}

	if len(sink.batches) != 1 {
		t.Fatalf("unexpected batch count: got=%d want=%d", len(sink.batches), 1)
	}
	got := sink.batches[0]
	if len(got) != 2 {
		t.Fatalf("unexpected message count: got=%d want=%d", len(got), 2)
	}
	if got[0].User.Platform != "twitch" || got[0].User.Channel != "streamer" {
		t.Fatalf("connection not stamped on entrant: %+v", got[0].User)
	}
}

func TestPollOnce_CursorTrailsNewestMessage(t *testing.T) {
	messages := []models.ChatMessage{
		{ID: "m1", Text: "hi", Ts: 200, User: models.Entrant{ID: "u1", Name: "alice"}},
		{ID: "m2", Text: "hi again", Ts: 180, User: models.Entrant{ID: "u1", Name: "alice"}},
	}
	srv := chatServer(t, messages, nil)
	defer srv.Close()

	p := New(srv.URL, &captureSink{})
	conn := Connection{Platform: "twitch", Channel: "streamer"}
	p.SetCursor(conn, 150)

	if err := p.PollOnce(context.Background(), conn); err != nil {
		t.Fatalf("unexpected poll error: %v", err)
	}

	if got := p.Cursor(conn); got != 195 {
		t.Fatalf("unexpected cursor: got=%d want=%d", got, 195)
	}
}

func TestPollOnce_CursorNeverMovesBackward(t *testing.T) {
	messages := []models.ChatMessage{
		{ID: "m1", Text: "old", Ts: 100, User: models.Entrant{ID: "u1", Name: "alice"}},
	}
	srv := chatServer(t, messages, nil)
	defer srv.Close()

	p := New(srv.URL, &captureSink{})
	conn := Connection{Platform: "twitch", Channel: "streamer"}
	p.SetCursor(conn, 150)

	if err := p.PollOnce(context.Background(), conn); err != nil {
		t.Fatalf("unexpected poll error: %v", err)
	}

	if got := p.Cursor(conn); got != 150 {
		t.Fatalf("cursor moved backward: got=%d want=%d", got, 150)
	}
}

func TestPollOnce_SendsCursorAsQuery(t *testing.T) {
	var gotTs string
	srv := chatServer(t, nil, &gotTs)
	defer srv.Close()

	sink := &captureSink{}
	p := New(srv.URL, sink)
	conn := Connection{Platform: "vk", Channel: "someone"}
	p.SetCursor(conn, 777)

	if err := p.PollOnce(context.Background(), conn); err != nil {
		t.Fatalf("unexpected poll error: %v", err)
	}

	if gotTs != "777" {
		t.Fatalf("unexpected ts query: got=%q want=%q", gotTs, "777")
	}
	if len(sink.batches) != 0 {
		t.Fatalf("empty poll should not reach the sink, got %d batches", len(sink.batches))
	}
}

func TestConnect_SeedsCursor(t *testing.T) {
	srv := chatServer(t, nil, nil)
	defer srv.Close()

	p := New(srv.URL, &captureSink{})
	conn := Connection{Platform: "twitch", Channel: "streamer"}

	if err := p.Connect(context.Background(), conn); err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	if p.Cursor(conn) == 0 {
		t.Fatal("connect should seed a non-zero cursor")
	}
}

func TestStreamInfo_ReturnsRewards(t *testing.T) {
	srv := chatServer(t, nil, nil)
	defer srv.Close()

	p := New(srv.URL, &captureSink{})
	rewards, err := p.StreamInfo(context.Background(), Connection{Platform: "twitch", Channel: "streamer"})
	if err != nil {
		t.Fatalf("unexpected stream info error: %v", err)
	}

	if len(rewards) != 1 {
		t.Fatalf("unexpected reward count: got=%d want=%d", len(rewards), 1)
	}
	if rewards[0].ID != "r1" || rewards[0].Cost != 500 {
		t.Fatalf("unexpected reward: %+v", rewards[0])
	}
}
