package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessReservationsFilter) ([]*domain.Reservation, error)
}

// ScheduleRepository интерфейс репозитория недельного расписания
type ScheduleRepository interface {
	Get(ctx context.Context, businessID int64) (domain.WeekSchedule, error)
}

// OutboxRepository интерфейс записи событий в outbox
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// CatalogClient интерфейс клиента каталога бизнесов и услуг
type CatalogClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetClientName(ctx context.Context, userID int64) (string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс для бизнес-метрик
type MetricsRecorder interface {
	RecordReservationOperation(operation, result string)
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
