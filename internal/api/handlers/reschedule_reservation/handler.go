package reschedule_reservation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	rescheduleReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/reschedule_reservation"
)

// CodePartialFailure код ответа, когда исходное бронирование отменено, а новое не создано
const CodePartialFailure = "partial_failure"

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDateTime      = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgCannotReschedule     = "бронирование нельзя перенести"
	msgSlotNotAvailable     = "выбранное время уже занято, исходное бронирование сохранено"
	msgPartialFailure       = "исходное бронирование отменено, новое создать не удалось"
	msgBusinessClosed       = "бизнес не работает в выбранную дату"
	msgInvalidTimeSlot      = "некорректный временной слот"
	msgTooLateToBook        = "слишком поздно для бронирования этого слота"
	msgCatalogEntryGone     = "бизнес или услуга больше не доступны"
	msgDateInPast           = "дата бронирования уже прошла"
)

type Handler struct {
	useCase RescheduleReservationUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := strconv.ParseInt(mux.Vars(r)["reservationId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(reservationID, userID)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		// Проверяется первой: частичный сбой оборачивает ошибку создания
		case errors.Is(err, rescheduleReservation.ErrPartialFailure):
			h.logger.Error("PATCH /reservations/{id}/reschedule - Partial failure: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondErrorCode(w, http.StatusConflict, CodePartialFailure, msgPartialFailure)

		case errors.Is(err, rescheduleReservation.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleReservation.ErrCannotReschedule):
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, createReservation.ErrSlotNotAvailable):
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createReservation.ErrBusinessClosed):
			handlers.RespondBadRequest(w, msgBusinessClosed)

		case errors.Is(err, createReservation.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createReservation.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createReservation.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, createReservation.ErrBusinessNotFound), errors.Is(err, createReservation.ErrServiceNotFound):
			h.logger.Warn("PATCH /reservations/{id}/reschedule - Catalog entry gone: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, msgCatalogEntryGone)

		case errors.Is(err, rescheduleReservation.ErrInvalidInput), errors.Is(err, createReservation.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /reservations/{id}/reschedule - Failed to reschedule: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id}/reschedule - Reservation rescheduled: reservation_id=%d -> %d, user_id=%d",
		reservationID, result.Reservation.ID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
