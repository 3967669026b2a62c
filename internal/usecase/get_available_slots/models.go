package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BusinessID int64     // ID бизнеса
	ServiceID  int64     // ID услуги
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time          // Дата, на которую запрашивались слоты
	BusinessID      int64              // ID бизнеса
	ServiceID       int64              // ID услуги
	DurationMinutes int                // Длительность услуги
	Slots           []types.TimeString // Времена начала, по возрастанию
}
