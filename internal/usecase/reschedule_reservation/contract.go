package reschedule_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
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

// ReservationCreator создание нового бронирования (use case create_reservation)
type ReservationCreator interface {
	Execute(ctx context.Context, req *create_reservation.Request) (*create_reservation.Response, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
