package get_client_reservations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

const (
	msgMissingUserID   = "отсутствует ID пользователя"
	msgInvalidStatus   = "некорректный статус, допустимо: confirmed, cancelled, finalized"
	msgInvalidBusiness = "некорректный business_id"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/clients/me/reservations
// Query params: status, business_id (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /clients/me/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetClientReservationsRequest{ClientID: userID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}
	if raw := r.URL.Query().Get("business_id"); raw != "" {
		businessID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || businessID <= 0 {
			h.logger.Warn("GET /clients/me/reservations - Invalid business_id: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidBusiness)
			return
		}
		req.BusinessID = &businessID
	}

	result, err := h.service.GetClientReservations(r.Context(), req)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			h.logger.Warn("GET /clients/me/reservations - Invalid status: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /clients/me/reservations - Failed to get reservations: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /clients/me/reservations - Reservations retrieved successfully: user_id=%d, count=%d",
		userID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
