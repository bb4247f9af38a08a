package reservation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/auth"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/httputil"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/reservations", h.List)
	router.Patch("/reservations/status", h.UpdateStatus)
	router.Delete("/reservations", h.Delete)
}

// List returns all reservations joined with user and book projections,
// newest first. With ?status=pending only pending reservations are returned,
// oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		details []Detail
		err     error
	)

	if r.URL.Query().Get("status") == StatusPending {
		details, err = h.service.ListPending(r.Context())
	} else {
		details, err = h.service.ListAll(r.Context())
	}

	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch reservations", "error", err)
		httputil.RespondWithErrorDetails(w, http.StatusInternalServerError, "Failed to fetch reservations", err.Error())
		return
	}

	h.metrics.RecordReservationsListViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, ListResponse{
		Success:      true,
		Count:        len(details),
		Reservations: details,
	})
}

// UpdateStatus applies a reservation status transition
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		if req.ReservationID == "" || req.Status == "" {
			httputil.RespondWithError(w, http.StatusBadRequest, "reservation_id and status are required")
		} else {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status. Must be: pending, confirmed, cancelled, or expired")
		}
		return
	}

	actor, _ := auth.GetUserID(r.Context())
	h.logger.InfoContext(r.Context(), "updating reservation status",
		"reservation_id", req.ReservationID, "status", req.Status, "actor", actor)

	if err := h.service.UpdateStatus(r.Context(), req.ReservationID, req.Status); err != nil {
		h.handleServiceError(w, r, err, "Failed to update reservation status")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, StatusResponse{
		Success: true,
		Message: fmt.Sprintf("Reservation %s successfully", req.Status),
	})
}

// Delete removes a reservation row. Related loans are left untouched.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "reservation_id is required")
		return
	}

	actor, _ := auth.GetUserID(r.Context())
	h.logger.InfoContext(r.Context(), "deleting reservation", "reservation_id", req.ReservationID, "actor", actor)

	if err := h.service.Delete(r.Context(), req.ReservationID); err != nil {
		h.handleServiceError(w, r, err, "Failed to delete reservation")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, StatusResponse{
		Success: true,
		Message: "Reservation deleted successfully",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrReservationNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Reservation not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, "reservation_id and status are required")
	case errors.Is(err, ErrMissingReservationID):
		httputil.RespondWithError(w, http.StatusBadRequest, "reservation_id is required")
	case errors.Is(err, ErrInvalidStatus):
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status. Must be: pending, confirmed, cancelled, or expired")
	default:
		h.logger.ErrorContext(r.Context(), fallback, "error", err)
		httputil.RespondWithErrorDetails(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
