package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/integrators"
	"github.com/san-kum/bouncesim/internal/sim"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// two bodies of different colors overlapping at the start, so the first
// frame raises a collision
func build() (*sim.Simulator, error) {
	bd := dynamo.Boundary{Center: dynamo.V(400, 300), Radius: 280}
	w, err := sim.NewWorld(bd, []dynamo.BodySpec{
		{Pos: dynamo.V(395, 300), Vel: dynamo.V(50, 0), Radius: 10, Color: dynamo.Color{255, 0, 0}},
		{Pos: dynamo.V(405, 300), Vel: dynamo.V(-50, 0), Radius: 10, Color: dynamo.Color{0, 0, 255}},
	})
	if err != nil {
		return nil, err
	}
	return sim.New(w, integrators.NewEuler(), dynamo.DefaultParams())
}

func newServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(build, "pairs", 60)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

func TestTickPublishesFrame(t *testing.T) {
	s := newServer(t)
	if err := s.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	f := s.Latest()
	if f.Time <= 0 {
		t.Errorf("expected time to advance, got %v", f.Time)
	}
	if len(f.Events) == 0 || f.Events[0].Kind != dynamo.BodyHitDiffColor {
		t.Errorf("expected a different-color hit, got %v", f.Events)
	}
	if len(f.Bodies) != 3 {
		t.Errorf("expected a spawned third body, got %d bodies", len(f.Bodies))
	}
	seen := map[dynamo.ID]int{}
	for _, id := range f.Hit {
		seen[id]++
	}
	if seen[1] != 1 || seen[2] != 1 {
		t.Errorf("expected bodies 1 and 2 listed once each, got %v", f.Hit)
	}

	if err := s.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	for _, e := range s.Latest().Events {
		if e.Time <= f.Time {
			t.Errorf("event at %v carried over from the previous frame", e.Time)
		}
	}
}

func TestNewServerBuildError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewServer(func() (*sim.Simulator, error) { return nil, boom }, "x", 60)
	if !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestHTTPEndpoints(t *testing.T) {
	s := newServer(t)
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"scene":"pairs"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	var f Frame
	if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
		t.Fatalf("state is not a frame: %v", err)
	}
	if len(f.Bodies) != 2 || f.Boundary.Radius != 280 {
		t.Errorf("unexpected state %+v", f)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/control", strings.NewReader(`{}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty command: got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/control", strings.NewReader(`{"type":"pause"}`)))
	if w.Code != http.StatusAccepted {
		t.Fatalf("pause: got %d", w.Code)
	}

	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if f := s.Latest(); f.Running || f.Time != 0 {
		t.Errorf("paused server advanced to %v", f.Time)
	}
}

func TestCommands(t *testing.T) {
	s := newServer(t)
	s.Tick()

	for _, cmd := range []Command{{Type: "gravity", Value: 100}, {Type: "reset"}, {Type: "bogus"}} {
		s.hub.commands <- cmd
	}
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	f := s.Latest()
	if f.Gravity != dynamo.DefaultParams().Gravity {
		t.Errorf("reset should rebuild with default gravity, got %v", f.Gravity)
	}
	if f.Time > 1.0/60+1e-9 {
		t.Errorf("reset should restart time, got %v", f.Time)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	s := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string `json:"type"`
		Data Frame  `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if msg.Type != "frame" || msg.Data.Scene != "pairs" || len(msg.Data.Events) == 0 {
		t.Errorf("unexpected message %+v", msg)
	}

	if err := conn.WriteJSON(Command{Type: "pause"}); err != nil {
		t.Fatal(err)
	}
	select {
	case cmd := <-s.hub.Commands():
		if cmd.Type != "pause" {
			t.Errorf("got command %q", cmd.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never arrived")
	}
}
