package handler

import (
	"encoding/json"
	"net/http"

	"bookminton/internal/bookings/refresher"
	"bookminton/internal/bookings/service"
	httputil "bookminton/pkg/http"
	"bookminton/pkg/logger"
	"bookminton/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// UpcomingBoard serves the cached upcoming list and accepts refresh requests.
type UpcomingBoard interface {
	Board() refresher.Board
	Nudge()
}

type BookingHandler struct {
	service service.BookingService
	board   UpcomingBoard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, board UpcomingBoard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		board:   board,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	h.board.Nudge()

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

// Upcoming serves the refresher's snapshot rather than recomputing per request.
func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.board.Board()); err != nil {
		h.log.Error("failed to write success response", "handler", "Upcoming", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Transactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Transactions", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	transactions, total, err := h.service.Transactions(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Transactions", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, transactions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Transactions", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.service.Clear(r.Context()); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Clear", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	h.board.Nudge()

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.DELETE("/api/v1/bookings", h.Clear)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.GET("/api/v1/bookings/upcoming", h.Upcoming)
	router.GET("/api/v1/transactions", h.Transactions)
}
