package get_last_reservation

import (
	"encoding/json"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
)

const msgMissingUserID = "отсутствует ID пользователя"

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

// Handle GET /api/v1/clients/me/reservations/last
// Возвращает последнее завершённое бронирование клиента или null
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /clients/me/reservations/last - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetLast(r.Context(), userID)
	if err != nil {
		h.logger.Error("GET /clients/me/reservations/last - Failed to select reservation: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	if result == nil {
		h.logger.Info("GET /clients/me/reservations/last - No reservation: user_id=%d", userID)
		handlers.RespondJSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}

	h.logger.Info("GET /clients/me/reservations/last - Reservation selected: user_id=%d, reservation_id=%d", userID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
