package winners

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReport_SubmitsWinnersAndReturnsIDs(t *testing.T) {
	var gotBody reportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loto_winners" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ids": map[string]string{"alice": "w-42"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ids, err := c.Report(context.Background(), "twitch", "streamer", []ReportedWinner{
		{Username: "alice", SuperGameStatus: "skip"},
	})
	if err != nil {
		t.Fatalf("unexpected report error: %v", err)
	}

	if gotBody.Server != "twitch" || gotBody.Channel != "streamer" {
		t.Fatalf("unexpected request target: server=%q channel=%q", gotBody.Server, gotBody.Channel)
	}
	if len(gotBody.Winners) != 1 || gotBody.Winners[0].Username != "alice" {
		t.Fatalf("unexpected winners payload: %+v", gotBody.Winners)
	}
	if ids["alice"] != "w-42" {
		t.Fatalf("unexpected id for alice: got=%q want=%q", ids["alice"], "w-42")
	}
}

func TestUpdateStatus_PostsToWinnerID(t *testing.T) {
	var gotPath string
	var gotBody updateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.UpdateStatus(context.Background(), "w-42", "twitch", "streamer", "win"); err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}

	if gotPath != "/loto_winners/w-42" {
		t.Fatalf("unexpected path: got=%q want=%q", gotPath, "/loto_winners/w-42")
	}
	if gotBody.SuperGameStatus != "win" {
		t.Fatalf("unexpected status: got=%q want=%q", gotBody.SuperGameStatus, "win")
	}
}

func TestList_ReturnsHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("channel"); got != "streamer" {
			t.Errorf("unexpected channel query: %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"winners": []WinnerEntry{
				{ID: "w-1", Username: "alice", SuperGameStatus: "lose"},
				{ID: "w-2", Username: "bob", SuperGameStatus: "win"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	entries, err := c.List(context.Background(), "twitch", "streamer")
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("unexpected entry count: got=%d want=%d", len(entries), 2)
	}
	if entries[1].Username != "bob" || entries[1].SuperGameStatus != "win" {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
}

func TestReport_SurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Report(context.Background(), "twitch", "streamer", nil); err == nil {
		t.Fatal("expected an error for status 500")
	}
}
