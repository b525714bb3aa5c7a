package handler

import (
	"net/http"
	"time"

	"bookminton/internal/bookings/refresher"
	"bookminton/internal/catalog"
	"bookminton/pkg/clock"
	httputil "bookminton/pkg/http"
	"bookminton/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HealthResponse struct {
	Status      string     `json:"status"`
	Venues      int        `json:"venues,omitempty"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

type boardReader interface {
	Board() refresher.Board
}

type HealthHandler struct {
	catalog    *catalog.Catalog
	board      boardReader
	clock      clock.Clock
	staleAfter time.Duration
	log        *logger.Logger
}

// NewHealthHandler reports ready once the catalog holds venues and the upcoming
// board has been refreshed within staleAfter.
func NewHealthHandler(cat *catalog.Catalog, board boardReader, clk clock.Clock, staleAfter time.Duration, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		catalog:    cat,
		board:      board,
		clock:      clk,
		staleAfter: staleAfter,
		log:        log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := HealthResponse{Status: "ready", Venues: len(h.catalog.Venues())}
	status := http.StatusOK

	refreshedAt := h.board.Board().RefreshedAt
	if !refreshedAt.IsZero() {
		resp.RefreshedAt = &refreshedAt
	}

	switch {
	case resp.Venues == 0:
		h.log.Error("Readiness check failed", "reason", "catalog is empty", "path", r.URL.Path)
		resp.Status, status = "unavailable", http.StatusServiceUnavailable
	case refreshedAt.IsZero() || h.clock.Now().Sub(refreshedAt) > h.staleAfter:
		h.log.Warn("Readiness check failed", "reason", "upcoming board is stale", "refreshed_at", refreshedAt, "path", r.URL.Path)
		resp.Status, status = "unavailable", http.StatusServiceUnavailable
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
