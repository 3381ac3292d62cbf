package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/user/catalog-crawler/internal/domain"
	"go.uber.org/zap"
)

func (s *Server) handleScrapeRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeInput
	// The body is optional; an empty one selects the default query.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.scraper.Scrape(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			s.respondWithError(w, http.StatusConflict, "A scrape run is already in progress")
		case domain.IsFatal(err):
			s.respondWithError(w, http.StatusBadGateway, err.Error())
		default:
			s.logger.Error("scrape request failed", zap.Error(err))
			s.respondWithError(w, http.StatusInternalServerError, "Scrape failed")
		}
		return
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	healthStatus := map[string]string{"status": "ok"}
	if s.redis == nil {
		s.respondWithJSON(w, http.StatusOK, healthStatus)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.redis.Ping(ctx); err != nil {
		s.logger.Error("health check failed for redis", zap.Error(err))
		healthStatus["status"] = "degraded"
		healthStatus["redis"] = "unhealthy"
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	healthStatus["redis"] = "healthy"
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
