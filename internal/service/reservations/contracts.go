package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByClientID(ctx context.Context, filter domain.ClientReservationsFilter) ([]*domain.Reservation, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessReservationsFilter) ([]*domain.Reservation, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus, at time.Time) error
}

// OutboxRepository интерфейс записи событий в outbox
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// CatalogClient интерфейс клиента каталога
type CatalogClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder интерфейс для бизнес-метрик
type MetricsRecorder interface {
	RecordReservationOperation(operation, result string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
