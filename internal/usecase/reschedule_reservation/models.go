package reschedule_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	ReservationID int64
	ActorID       int64
	Date          time.Time
	StartTime     types.TimeString
}

// Response результат переноса: новое бронирование и ID отменённого исходного
type Response struct {
	Reservation *domain.Reservation
	PreviousID  int64
}
