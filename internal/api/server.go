package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/user/catalog-crawler/internal/config"
	"github.com/user/catalog-crawler/internal/monitoring"
	"github.com/user/catalog-crawler/internal/usecase"
	"go.uber.org/zap"
)

// A run visits several pages with fixed waits; give it room.
const scrapeTimeout = 5 * time.Minute

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	scraper    usecase.Scraper
	redis      Pinger
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewServer wires the HTTP trigger. redis may be nil when captures stay in memory.
func NewServer(cfg *config.Config, sc usecase.Scraper, redis Pinger, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		scraper: sc,
		redis:   redis,
		metrics: m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: scrapeTimeout + 10*time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
