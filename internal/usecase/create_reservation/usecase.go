package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/schedule"
	catalogClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

const operationCreate = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleRepo    ScheduleRepository
	outboxRepo      OutboxRepository
	catalogClient   CatalogClient
	userClient      UserServiceClient
	txManager       TransactionManager
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleRepo ScheduleRepository,
	outboxRepo OutboxRepository,
	catalogClient CatalogClient,
	userClient UserServiceClient,
	txManager TransactionManager,
	metrics MetricsRecorder,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleRepo:    scheduleRepo,
		outboxRepo:      outboxRepo,
		catalogClient:   catalogClient,
		userClient:      userClient,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка слота и вставка идут в сериализуемой транзакции, день перечитывается
// под блокировкой. Пересечение, найденное здесь или ограничением БД, возвращается
// как ErrSlotNotAvailable; повторных попыток нет
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.RecordReservationOperation(operationCreate, resultOf(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: actor=%d, client=%d, business=%d, service=%d, date=%s, time=%s, origin=%s",
		req.ActorID, req.ClientID, req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.Origin)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	now := domain.WallClock(uc.timeProvider.Now())
	date := domain.DateOnly(req.Date)

	// 2. Бизнес и права на ручную запись
	business, err := uc.catalogClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateReservation: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateReservation: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	if req.Origin == domain.OriginBusiness && !business.IsOwner(req.ActorID) {
		uc.logger.Warn("CreateReservation: user=%d is not an owner of business=%d", req.ActorID, req.BusinessID)
		return nil, ErrAccessDenied
	}

	// 3. Услуга
	service, err := uc.catalogClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateReservation: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateReservation: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Дата и время
	if domain.IsDateInPast(date, now) {
		uc.logger.Warn("CreateReservation: date %s is in the past", date.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: %s is in the past", ErrInvalidDate, date.Format(domain.DateFormat))
	}

	startAt, err := req.StartTime.OnDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	endAt := startAt.Add(time.Duration(service.DurationMinutes) * time.Minute)

	if req.Origin == domain.OriginBusiness && startAt.Before(now) {
		uc.logger.Warn("CreateReservation: manual entry at %s is in the past", startAt.Format(time.DateTime))
		return nil, fmt.Errorf("%w: %s has already passed", ErrTooLateToBook, startAt.Format(time.DateTime))
	}

	// 5. Имя клиента для календаря бизнеса (без имени бронирование тоже создаётся)
	clientName, err := uc.userClient.GetClientName(ctx, req.ClientID)
	if err != nil {
		uc.logger.Warn("CreateReservation: client name for user=%d is unavailable: %v", req.ClientID, err)
	}

	var result *domain.Reservation

	// 6. Проверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if req.Origin == domain.OriginClient {
			schedule, err := uc.loadSchedule(txCtx, req.BusinessID)
			if err != nil {
				return err
			}

			if err := validateSlot(schedule.Day(date), date, req.StartTime, service.DurationMinutes, now); err != nil {
				uc.logger.Warn("CreateReservation: slot validation failed: %v", err)
				return err
			}
		}

		// 6.1. Подтверждённые бронирования дня с блокировкой (FOR UPDATE)
		existing, err := uc.reservationRepo.GetByBusinessWithFilter(txCtx, domain.ForDay(req.BusinessID, date))
		if err != nil {
			return uc.storageError("failed to get reservations", err)
		}

		candidate := domain.Interval{Start: startAt, End: endAt}
		if busy, conflict := availability.FindConflict(candidate, availability.BusyIntervals(existing)); conflict {
			uc.logger.Warn("CreateReservation: %s-%s overlaps %s-%s",
				startAt.Format(domain.TimeFormat), endAt.Format(domain.TimeFormat),
				busy.Start.Format(domain.TimeFormat), busy.End.Format(domain.TimeFormat))
			return ErrSlotNotAvailable
		}

		// 6.2. Создаем бронирование со снимком данных каталога
		reservation := &domain.Reservation{
			BusinessID:      req.BusinessID,
			ServiceID:       req.ServiceID,
			ClientID:        req.ClientID,
			StartAt:         startAt,
			EndAt:           endAt,
			Status:          domain.StatusConfirmed,
			Origin:          req.Origin,
			ClientName:      clientName,
			BusinessName:    business.Name,
			ServiceName:     service.Name,
			DurationMinutes: service.DurationMinutes,
			Price:           service.Price,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			return uc.storageError("failed to create reservation", err)
		}

		// 6.3. Событие в outbox в той же транзакции
		event, err := domain.NewReservationEvent(domain.EventReservationCreated, created, nil, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("CreateReservation: failed to write outbox event: %v", err)
			return fmt.Errorf("%w: failed to write outbox event: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CreateReservation: concurrent booking of business=%d at %s: %v",
				req.BusinessID, startAt.Format(time.DateTime), err)
			return nil, fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d (%s-%s)",
		result.ID, result.StartAt.Format(time.DateTime), result.EndAt.Format(domain.TimeFormat))

	return &Response{Reservation: result}, nil
}

// loadSchedule загружает и нормализует расписание. Бизнес без расписания закрыт
func (uc *UseCase) loadSchedule(ctx context.Context, businessID int64) (domain.WeekSchedule, error) {
	raw, err := uc.scheduleRepo.Get(ctx, businessID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		uc.logger.Error("CreateReservation: failed to get schedule of business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	schedule, err := domain.NormalizeWeekSchedule(raw)
	if err != nil {
		uc.logger.Error("CreateReservation: stored schedule of business=%d is invalid: %v", businessID, err)
		return nil, fmt.Errorf("%w: invalid stored schedule: %v", ErrInternal, err)
	}
	return schedule, nil
}

// storageError переводит ошибки репозитория: пересечение и конкурентная
// транзакция означают, что слот заняли
func (uc *UseCase) storageError(msg string, err error) error {
	if errors.Is(err, reservationRepo.ErrOverlap) || errors.Is(err, reservationRepo.ErrConcurrentUpdate) {
		uc.logger.Warn("CreateReservation: %s: %v", msg, err)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	}
	uc.logger.Error("CreateReservation: %s: %v", msg, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, err)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrSlotNotAvailable):
		return metrics.ResultConflict
	case errors.Is(err, ErrInternal):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}
