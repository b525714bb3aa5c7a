package handler

import (
	"errors"
	"net/http"

	"bookminton/internal/availability"
	bookingserrors "bookminton/internal/bookings/errors"
	"bookminton/internal/catalog"
	"bookminton/internal/pricing"
	apperrors "bookminton/pkg/errors"
	httputil "bookminton/pkg/http"
	"bookminton/pkg/logger"
	"bookminton/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityResponse struct {
	VenueID string            `json:"venue_id"`
	CourtID string            `json:"court_id"`
	Date    model.Date        `json:"date"`
	Start   model.TimeOfDay   `json:"start"`
	End     model.TimeOfDay   `json:"end"`
	Status  model.CourtStatus `json:"status"`
}

type OptionsResponse struct {
	Date          model.Date        `json:"date"`
	Times         []model.TimeOfDay `json:"times"`
	EarliestStart *model.TimeOfDay  `json:"earliest_start,omitempty"`
}

type VenueHandler struct {
	catalog *catalog.Catalog
	engine  *availability.Engine
	log     *logger.Logger
}

func NewVenueHandler(cat *catalog.Catalog, engine *availability.Engine, log *logger.Logger) *VenueHandler {
	return &VenueHandler{
		catalog: cat,
		engine:  engine,
		log:     log,
	}
}

func (h *VenueHandler) Sports(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.catalog.Sports()); err != nil {
		h.log.Error("failed to write success response", "handler", "Sports", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.catalog.Venues()); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("venue_id")

	venue, ok := h.catalog.Venue(id)
	if !ok {
		h.writeError(w, "GetByID", apperrors.NotFoundWithID("Venue", id))
		return
	}

	if err := httputil.WriteSuccess(w, venue); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	venueID, courtID := ps.ByName("venue_id"), ps.ByName("court_id")

	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	iv, err := httputil.ExtractInterval(r)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	status, err := h.engine.CheckAvailability(r.Context(), venueID, courtID, date, iv)
	if err != nil {
		h.log.Error("Failed to check availability", "venue_id", venueID, "court_id", courtID, "error", err)
		h.writeError(w, "Availability", apperrors.Internal("Failed to check availability", err))
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		VenueID: venueID,
		CourtID: courtID,
		Date:    date,
		Start:   iv.Start,
		End:     iv.End,
		Status:  status,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) StartOptions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "StartOptions", err)
		return
	}

	times, err := h.engine.StartOptions(r.Context(), ps.ByName("venue_id"), ps.ByName("court_id"), date)
	if err != nil {
		h.writeError(w, "StartOptions", h.optionsError(ps, err))
		return
	}

	resp := OptionsResponse{Date: date, Times: times}
	if earliest, ok := h.engine.EarliestStart(date); ok && date == h.engine.Today() {
		resp.EarliestStart = &earliest
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "StartOptions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) EndOptions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "EndOptions", err)
		return
	}
	start, err := httputil.ExtractTimeOfDay(r, "start", false)
	if err != nil {
		h.writeError(w, "EndOptions", err)
		return
	}

	times, err := h.engine.EndOptions(r.Context(), ps.ByName("venue_id"), ps.ByName("court_id"), date, start)
	if err != nil {
		h.writeError(w, "EndOptions", h.optionsError(ps, err))
		return
	}

	if err := httputil.WriteSuccess(w, OptionsResponse{Date: date, Times: times}); err != nil {
		h.log.Error("failed to write success response", "handler", "EndOptions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) Quote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	venueID, courtID := ps.ByName("venue_id"), ps.ByName("court_id")

	sportID := r.URL.Query().Get("sport_id")
	if sportID == "" {
		h.writeError(w, "Quote", apperrors.IncompleteInput("sport_id is required", map[string]any{"field": "sport_id"}))
		return
	}
	iv, err := httputil.ExtractInterval(r)
	if err != nil {
		h.writeError(w, "Quote", err)
		return
	}

	_, court, ok := h.catalog.Court(venueID, courtID)
	if !ok {
		h.writeError(w, "Quote", apperrors.NotFoundWithID("Court", courtID))
		return
	}

	if err := httputil.WriteSuccess(w, pricing.NewQuote(sportID, court.Sports, iv)); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) AvailableCourts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sportID := r.URL.Query().Get("sport_id")
	if sportID == "" {
		h.writeError(w, "AvailableCourts", apperrors.IncompleteInput("sport_id is required", map[string]any{"field": "sport_id"}))
		return
	}
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		h.writeError(w, "AvailableCourts", err)
		return
	}
	iv, err := httputil.ExtractInterval(r)
	if err != nil {
		h.writeError(w, "AvailableCourts", err)
		return
	}

	courts, err := h.engine.FindAvailableCourts(r.Context(), sportID, date, iv)
	if err != nil {
		h.log.Error("Failed to find available courts", "sport_id", sportID, "error", err)
		h.writeError(w, "AvailableCourts", apperrors.Internal("Failed to find available courts", err))
		return
	}

	if err := httputil.WriteSuccess(w, courts); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableCourts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VenueHandler) optionsError(ps httprouter.Params, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Court", ps.ByName("court_id")).WithCause(err)
	}
	h.log.Error("Failed to list time options", "error", err)
	return apperrors.Internal("Failed to list time options", err)
}

func (h *VenueHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *VenueHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sports", h.Sports)
	router.GET("/api/v1/venues", h.GetAll)
	router.GET("/api/v1/venues/:venue_id", h.GetByID)
	router.GET("/api/v1/venues/:venue_id/courts/:court_id/availability", h.Availability)
	router.GET("/api/v1/venues/:venue_id/courts/:court_id/start-options", h.StartOptions)
	router.GET("/api/v1/venues/:venue_id/courts/:court_id/end-options", h.EndOptions)
	router.GET("/api/v1/venues/:venue_id/courts/:court_id/quote", h.Quote)
	router.GET("/api/v1/courts/available", h.AvailableCourts)
}
