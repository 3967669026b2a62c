package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if !req.Origin.IsValid() {
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidInput, req.Origin)
	}

	// Клиент записывается только на себя
	if req.Origin == domain.OriginClient && req.ClientID != req.ActorID {
		return fmt.Errorf("%w: client can only book for themselves", ErrInvalidInput)
	}

	return nil
}

// validateSlot проверяет, что клиент выбрал слот из сетки дня и он ещё не прошёл
func validateSlot(day domain.DaySchedule, date time.Time, startTime types.TimeString, durationMinutes int, now time.Time) error {
	if !day.Open {
		return ErrBusinessClosed
	}

	slots := availability.GenerateSlots(day, durationMinutes)
	if !availability.Contains(slots, startTime) {
		return fmt.Errorf("%w: %s is not a slot start for %d minutes service", ErrInvalidTimeSlot, startTime, durationMinutes)
	}

	if len(availability.FilterPast([]types.TimeString{startTime}, date, durationMinutes, now)) == 0 {
		return fmt.Errorf("%w: slot %s has already started", ErrTooLateToBook, startTime)
	}

	return nil
}
