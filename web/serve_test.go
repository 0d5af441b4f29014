package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"murmur.town/llm"
	"murmur.town/relay"
)

func testServer(t *testing.T, model llm.LanguageModel) *httptest.Server {
	t.Helper()
	if model == nil {
		model = &llm.Stub{}
	}
	server := NewServer(
		relay.Backends{Model: model},
		relay.Config{WorkDir: t.TempDir()},
		0,
		log.New(io.Discard),
	)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestSocketAnswersPing(t *testing.T) {
	ts := testServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev relay.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != relay.EventPong {
		t.Errorf("event type = %q, want %q", ev.Type, relay.EventPong)
	}
}

func TestSocketReportsProtocolError(t *testing.T) {
	ts := testServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev relay.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != relay.EventError || ev.Message == "" {
		t.Errorf("event = %+v, want error with message", ev)
	}
}

func TestDigestEndpoint(t *testing.T) {
	calls := 0
	model := &llm.Stub{Fn: func(ctx context.Context, req *llm.ChatRequest) (string, error) {
		calls++
		return fmt.Sprintf("summary %d", calls), nil
	}}
	ts := testServer(t, model)

	body := strings.NewReader(`{"texts":["one","two","three"]}`)
	resp, err := http.Post(ts.URL+"/digest", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var digest llm.Digest
	if err := json.NewDecoder(resp.Body).Decode(&digest); err != nil {
		t.Fatal(err)
	}
	if digest.Transcript != "one\ntwo\nthree" {
		t.Errorf("transcript = %q", digest.Transcript)
	}
	if len(digest.Sections) != 1 || digest.Summary == "" {
		t.Errorf("digest = %+v", digest)
	}
}

func TestDigestRejectsEmptyBody(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Post(ts.URL+"/digest", "application/json", strings.NewReader(`{"texts":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "murmur_") {
		t.Error("metrics page is missing relay metrics")
	}
}
