package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	ActorID    int64                    // Пользователь, выполняющий запрос
	ClientID   int64                    // Клиент, на которого оформляется бронирование
	BusinessID int64                    // ID бизнеса
	ServiceID  int64                    // ID услуги
	Date       time.Time                // Дата (без времени)
	StartTime  types.TimeString         // Время начала (например, "10:00")
	Origin     domain.ReservationOrigin // client - запись по сетке слотов, business - ручная запись владельцем
}

// Response модель ответа с созданным бронированием
type Response struct {
	Reservation *domain.Reservation
}
