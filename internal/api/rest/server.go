package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/logging"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
	batch   *BatchHandler
}

// NewServer creates a new REST API server. batchHandler may be nil.
func NewServer(port string, handler *Handler, batchHandler *BatchHandler, logger *logrus.Logger) *Server {
	return &Server{
		port:    port,
		handler: handler,
		batch:   batchHandler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(handler, batchHandler, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the route table. CORS wraps the router so preflight
// requests are answered before route matching.
func NewRouter(handler *Handler, batchHandler *BatchHandler, logger *logrus.Logger) http.Handler {
	log := logging.Component(logger, "http")
	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Games
	api.HandleFunc("/games/{league}/{gameID}/boxscore", handler.GetBoxscore).Methods("GET")
	api.HandleFunc("/games/{league}/{gameID}/ingest", handler.IngestGame).Methods("POST")

	// Leader boards
	api.HandleFunc("/rankings", handler.GetRankings).Methods("GET")

	// Batch runs
	if batchHandler != nil {
		api.HandleFunc("/batch", batchHandler.HandleBatchRequest).Methods("POST")
		api.HandleFunc("/batch", batchHandler.HandleBatchHistory).Methods("GET")
		api.HandleFunc("/batch/{jobID}", batchHandler.HandleBatchStatus).Methods("GET")
	}

	return CORSMiddleware(router)
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then cancels running batches.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	if s.batch != nil {
		if berr := s.batch.Shutdown(ctx); err == nil {
			err = berr
		}
	}
	return err
}
