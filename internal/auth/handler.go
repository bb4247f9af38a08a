package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/signin", h.Signin)
}

// Signin authenticates a user against the stored bcrypt hash
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(r.Context(), "signin validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, token, err := h.service.Signin(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "signin failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(r.Context(), "user signed in", "email", req.Email)

	SetAuthCookie(w, token)

	httputil.RespondWithJSON(w, http.StatusOK, SigninResponse{
		Success: true,
		Token:   token,
		User:    u,
	})
}
