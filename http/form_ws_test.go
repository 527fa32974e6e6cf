package http

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialForm(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestFormSessionPredictions(t *testing.T) {
	srv, _ := newTestServer(t, sampleAdapter(t), DefaultServerConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialForm(t, ts, nil)
	defer conn.Close()

	invalid := scenarioBody()
	invalid["Item_Visibility"] = 0.9

	messages := []map[string]interface{}{
		{"type": "schema", "id": "s"},
		{"type": "predict", "id": "1", "record": scenarioBody()},
		{"type": "predict", "id": "2", "record": invalid},
		{"type": "refresh", "id": "3"},
	}
	for _, msg := range messages {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	var replies []formReply
	for range messages {
		var reply formReply
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		replies = append(replies, reply)
	}

	if replies[0].Type != "schema" || replies[0].Schema == nil || len(replies[0].Schema.Columns) != 11 {
		t.Fatalf("unexpected schema reply %+v", replies[0])
	}
	if replies[1].Type != "prediction" || replies[1].ID != "1" || math.Abs(replies[1].Result.Prediction-2700) > 1e-6 {
		t.Fatalf("unexpected prediction reply %+v", replies[1])
	}
	if replies[2].Type != "error" || replies[2].ID != "2" || len(replies[2].Violations) == 0 {
		t.Fatalf("unexpected validation reply %+v", replies[2])
	}
	if replies[2].Violations[0].Field != "Item_Visibility" {
		t.Fatalf("unexpected violation %+v", replies[2].Violations)
	}
	if replies[3].Type != "error" || !strings.Contains(replies[3].Error, "refresh") {
		t.Fatalf("unexpected reply %+v", replies[3])
	}
}

func TestFormSessionMalformedMessage(t *testing.T) {
	srv, _ := newTestServer(t, sampleAdapter(t), DefaultServerConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialForm(t, ts, nil)
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{oops")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply formReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != "error" || !strings.HasPrefix(reply.Error, "malformed message") {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestFormSessionRejectsForeignOrigin(t *testing.T) {
	config := DefaultServerConfig()
	config.AllowedOrigins = []string{"http://localhost:3000"}
	srv, _ := newTestServer(t, sampleAdapter(t), config)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/predict"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}

	conn := dialForm(t, ts, http.Header{"Origin": []string{"http://localhost:3000"}})
	conn.Close()
}
