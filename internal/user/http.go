package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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
	router.Post("/register", h.Register)
}

// Register creates a new library user account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(r.Context(), "registration validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Email, name, and password are required")
		return
	}

	h.logger.InfoContext(r.Context(), "registering user", "email", req.Email)

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleRegisterError(w, r, err)
		return
	}

	h.metrics.RecordUserRegistration(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, RegisterResponse{
		Message: "Registration successful",
		User:    created,
	})
}

func (h *Handler) handleRegisterError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, ErrDuplicate):
		// Duplicate-key race past the pre-check
		httputil.RespondWithError(w, http.StatusBadRequest, "Registration failed due to duplicate information. Please try again.")
	case errors.Is(err, ErrIDGenerationExhausted):
		h.logger.ErrorContext(r.Context(), "user ID generation exhausted", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Unable to register")
	}
}
