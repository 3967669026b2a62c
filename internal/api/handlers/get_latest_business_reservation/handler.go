package get_latest_business_reservation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
)

const (
	msgInvalidBusinessID = "некорректный ID бизнеса"
	msgMissingUserID     = "отсутствует ID пользователя"
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

// Handle GET /api/v1/clients/me/businesses/{businessId}/reservations/latest
// Ближайшее предстоящее бронирование клиента в бизнесе, иначе последнее завершённое, иначе null
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil || businessID <= 0 {
		h.logger.Warn("GET /clients/me/businesses/{id}/reservations/latest - Invalid business ID: %s", vars["businessId"])
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /clients/me/businesses/{id}/reservations/latest - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.GetLatestAtBusiness(r.Context(), userID, businessID)
	if err != nil {
		h.logger.Error("GET /clients/me/businesses/{id}/reservations/latest - Failed to select reservation: user_id=%d, business_id=%d, error=%v",
			userID, businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	if result == nil {
		h.logger.Info("GET /clients/me/businesses/{id}/reservations/latest - No reservation: user_id=%d, business_id=%d", userID, businessID)
		handlers.RespondJSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}

	h.logger.Info("GET /clients/me/businesses/{id}/reservations/latest - Reservation selected: user_id=%d, reservation_id=%d, type=%s",
		userID, result.Reservation.ID, result.Type)
	handlers.RespondJSON(w, http.StatusOK, result)
}
