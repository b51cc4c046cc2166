package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	log    *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new WebSocket server
func NewServer(port string, logger *logrus.Logger) *Server {
	log := logging.Component(logger, "websocket")
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		port:   port,
		hub:    NewHub(log),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/boxscores", s.handleBoxscores)
	mux.HandleFunc("/ws/health", s.handleHealth)
	mux.HandleFunc("/ws/metrics", s.handleMetrics)
	return mux
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run starts the hub without listening. Start calls it.
func (s *Server) Run() {
	go s.hub.Run(s.ctx)
}

// Start starts the hub and blocks serving connections.
func (s *Server) Start() error {
	s.Run()
	s.log.WithField("port", s.port).Info("websocket server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleBoxscores(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade failed")
		return
	}

	client := NewClient(uuid.NewString(), conn, s.hub, s.log)
	if leagues := r.URL.Query()["league"]; len(leagues) > 0 {
		client.SetFilter(Filter{Leagues: leagues})
	}
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump(s.ctx)
	go client.ReadPump(s.ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.GetClientCount(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.hub.GetMetrics())
}

// BroadcastBoxscore sends an assembled game to every subscribed client.
func (s *Server) BroadcastBoxscore(game *store.GameBoxscore) {
	if game == nil {
		return
	}
	s.hub.Broadcast(game)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
