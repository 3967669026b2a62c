package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	// GetByBusinessWithFilter получает бронирования бизнеса, пересекающиеся с периодом фильтра
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessReservationsFilter) ([]*domain.Reservation, error)
}

// ScheduleRepository интерфейс репозитория недельного расписания
type ScheduleRepository interface {
	Get(ctx context.Context, businessID int64) (domain.WeekSchedule, error)
}

// CatalogClient интерфейс клиента каталога бизнесов и услуг
type CatalogClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error)
}

// MetricsRecorder интерфейс для бизнес-метрик
type MetricsRecorder interface {
	RecordSlotsServed(count int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
