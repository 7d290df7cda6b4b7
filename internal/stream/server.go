package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/san-kum/bouncesim/internal/dynamo"
	"github.com/san-kum/bouncesim/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Builder makes a fresh simulator for the served scene.
type Builder func() (*sim.Simulator, error)

// Frame is what viewers receive once per tick: the snapshot taken after the
// frame's sub-steps and every collision raised during them. Hit lists each
// body involved in those collisions once, in order of first contact.
type Frame struct {
	Scene    string            `json:"scene"`
	Time     float64           `json:"time"`
	Running  bool              `json:"running"`
	Boundary dynamo.Boundary   `json:"boundary"`
	Bodies   []dynamo.BodyView `json:"bodies"`
	Events   []dynamo.Event    `json:"events"`
	Hit      []dynamo.ID       `json:"hit"`
	Gravity  float64           `json:"gravity"`
}

// Server advances one simulator on its own goroutine and publishes frames
// between ticks. The simulator is never touched by HTTP handlers.
type Server struct {
	hub     *Hub
	build   Builder
	scene   string
	frameDt float64

	sim     *sim.Simulator
	pending []dynamo.Event
	running bool

	mu     sync.RWMutex
	latest Frame
}

func NewServer(build Builder, scene string, fps int) (*Server, error) {
	if fps <= 0 {
		fps = 60
	}
	s := &Server{
		hub:     NewHub(),
		build:   build,
		scene:   scene,
		frameDt: 1.0 / float64(fps),
		running: true,
	}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) reset() error {
	sm, err := s.build()
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	sm.AddListener(sim.ListenerFunc(func(e dynamo.Event) {
		s.pending = append(s.pending, e)
	}))
	s.sim = sm
	s.pending = nil
	s.publish()
	return nil
}

// Tick applies queued commands, advances one frame when running and
// broadcasts the result.
func (s *Server) Tick() error {
drain:
	for {
		select {
		case cmd := <-s.hub.Commands():
			if err := s.apply(cmd); err != nil {
				log.Printf("[stream] command %q: %v", cmd.Type, err)
			}
		default:
			break drain
		}
	}

	s.pending = s.pending[:0]
	if s.running {
		if err := s.sim.Advance(s.frameDt); err != nil {
			s.running = false
			s.publish()
			return err
		}
	}
	frame := s.publish()
	s.hub.Broadcast(Message{Type: "frame", Data: frame})
	return nil
}

func (s *Server) apply(cmd Command) error {
	switch cmd.Type {
	case "pause":
		s.running = false
	case "resume":
		s.running = true
	case "reset":
		return s.reset()
	case "gravity":
		return s.sim.SetGravity(cmd.Value)
	case "restitution":
		return s.sim.SetRestitution(cmd.Value)
	default:
		return fmt.Errorf("unknown command")
	}
	return nil
}

func (s *Server) publish() Frame {
	w := s.sim.World()
	events := make([]dynamo.Event, len(s.pending))
	copy(events, s.pending)
	hit := []dynamo.ID{}
	seen := make(map[dynamo.ID]struct{})
	for _, e := range events {
		for _, id := range e.Participants() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				hit = append(hit, id)
			}
		}
	}
	f := Frame{
		Scene:    s.scene,
		Time:     s.sim.Time(),
		Running:  s.running,
		Boundary: w.Boundary(),
		Bodies:   w.Snapshot(),
		Events:   events,
		Hit:      hit,
		Gravity:  s.sim.Params().Gravity,
	}
	s.mu.Lock()
	s.latest = f
	s.mu.Unlock()
	return f
}

// Latest returns the most recently published frame.
func (s *Server) Latest() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", s.handleHealth)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/state", s.handleState)
		v1.POST("/control", s.handleControl)
	}
	router.GET("/ws", s.handleWebSocket)
	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"scene":   s.scene,
		"viewers": s.hub.Clients(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.Latest())
}

func (s *Server) handleControl(c *gin.Context) {
	var cmd Command
	if err := c.ShouldBindJSON(&cmd); err != nil || cmd.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type required"})
		return
	}
	select {
	case s.hub.commands <- cmd:
		c.JSON(http.StatusAccepted, gin.H{"queued": cmd.Type})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "command queue full"})
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[stream] upgrade error: %v", err)
		return
	}
	cl := &client{hub: s.hub, conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case s.hub.register <- cl:
	case <-s.hub.done:
		conn.Close()
		return
	}
	go cl.writePump()
	go cl.readPump()
}

// Run serves addr and ticks at the configured frame rate until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Router()}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[stream] serving %s on %s", s.scene, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(time.Duration(s.frameDt * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				log.Printf("[stream] step failed at t=%.3f: %v", s.sim.Time(), err)
			}
		}
	}
}
