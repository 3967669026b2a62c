package reschedule_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

const operationReschedule = "reschedule"

// UseCase перенос бронирования: отмена исходного и создание нового.
// Шаги выполняются в разных транзакциях; при неудаче второго шага исходное
// бронирование подтверждается обратно
type UseCase struct {
	reservationRepo ReservationRepository
	outboxRepo      OutboxRepository
	catalogClient   CatalogClient
	creator         ReservationCreator
	txManager       TransactionManager
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	outboxRepo OutboxRepository,
	catalogClient CatalogClient,
	creator ReservationCreator,
	txManager TransactionManager,
	metrics MetricsRecorder,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		outboxRepo:      outboxRepo,
		catalogClient:   catalogClient,
		creator:         creator,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет перенос бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.RecordReservationOperation(operationReschedule, resultOf(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleReservation: reservation=%d, actor=%d, new date=%s, time=%s",
		req.ReservationID, req.ActorID, req.Date.Format(domain.DateFormat), req.StartTime)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleReservation: validation failed: %v", err)
		return nil, err
	}

	original, err := uc.reservationRepo.GetByID(ctx, req.ReservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Warn("RescheduleReservation: reservation id=%d not found", req.ReservationID)
			return nil, ErrReservationNotFound
		}
		uc.logger.Error("RescheduleReservation: failed to get reservation id=%d: %v", req.ReservationID, err)
		return nil, fmt.Errorf("%w: RescheduleReservation - repository error: %v", ErrInternal, err)
	}

	origin, err := uc.resolveOrigin(ctx, original, req.ActorID)
	if err != nil {
		return nil, err
	}

	now := domain.WallClock(uc.timeProvider.Now())
	if !original.CanBeCancelled(now) {
		uc.logger.Warn("RescheduleReservation: reservation id=%d has status %s", original.ID, original.EffectiveStatus(now))
		return nil, fmt.Errorf("%w: status is %s", ErrCannotReschedule, original.EffectiveStatus(now))
	}

	// Шаг 1: отмена исходного бронирования
	if err := uc.setStatus(ctx, original.ID, domain.StatusConfirmed, domain.StatusCancelled, now); err != nil {
		if errors.Is(err, reservationRepo.ErrStatusMismatch) {
			uc.logger.Warn("RescheduleReservation: reservation id=%d changed concurrently", original.ID)
			return nil, fmt.Errorf("%w: status changed concurrently", ErrCannotReschedule)
		}
		uc.logger.Error("RescheduleReservation: failed to cancel reservation id=%d: %v", original.ID, err)
		return nil, fmt.Errorf("%w: RescheduleReservation - cancel original: %v", ErrInternal, err)
	}

	// Шаг 2: новое бронирование и событие о переносе в одной транзакции
	var created *domain.Reservation
	createErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		resp, err := uc.creator.Execute(txCtx, &create_reservation.Request{
			ActorID:    req.ActorID,
			ClientID:   original.ClientID,
			BusinessID: original.BusinessID,
			ServiceID:  original.ServiceID,
			Date:       req.Date,
			StartTime:  req.StartTime,
			Origin:     origin,
		})
		if err != nil {
			return err
		}

		previousID := original.ID
		event, err := domain.NewReservationEvent(domain.EventReservationRescheduled, resp.Reservation, &previousID, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			return fmt.Errorf("%w: RescheduleReservation - write outbox event: %v", ErrInternal, err)
		}

		created = resp.Reservation
		return nil
	})
	if errors.Is(createErr, txmanager.ErrSerializationFailure) {
		createErr = fmt.Errorf("%w: %v", create_reservation.ErrSlotNotAvailable, createErr)
	}

	if createErr == nil {
		uc.logger.Info("RescheduleReservation: reservation id=%d moved to id=%d (%s)",
			original.ID, created.ID, created.StartAt.Format(time.DateTime))
		return &Response{Reservation: created, PreviousID: original.ID}, nil
	}

	uc.logger.Warn("RescheduleReservation: new reservation for id=%d not created: %v", original.ID, createErr)

	// Восстановление: исходное бронирование снова подтверждается
	restoreErr := uc.setStatus(ctx, original.ID, domain.StatusCancelled, domain.StatusConfirmed, now)
	if restoreErr == nil {
		uc.logger.Info("RescheduleReservation: reservation id=%d restored", original.ID)
		return nil, createErr
	}

	uc.logger.Error("RescheduleReservation: failed to restore reservation id=%d: %v", original.ID, restoreErr)
	uc.publishCancelled(ctx, original, now)

	return nil, fmt.Errorf("%w: reservation id=%d: %w; restore failed: %v", ErrPartialFailure, original.ID, createErr, restoreErr)
}

// resolveOrigin проверяет доступ к бронированию. Владелец бизнеса переносит по правилам
// ручной записи, клиент по сетке слотов. Постороннему бронирование не видно
func (uc *UseCase) resolveOrigin(ctx context.Context, r *domain.Reservation, actorID int64) (domain.ReservationOrigin, error) {
	business, err := uc.catalogClient.GetBusiness(ctx, r.BusinessID)
	if err != nil {
		if r.BelongsTo(actorID) {
			uc.logger.Warn("RescheduleReservation: catalog unavailable, acting as client: %v", err)
			return domain.OriginClient, nil
		}
		uc.logger.Error("RescheduleReservation: failed to get business id=%d: %v", r.BusinessID, err)
		return "", fmt.Errorf("%w: RescheduleReservation - get business: %v", ErrInternal, err)
	}

	switch {
	case business.IsOwner(actorID):
		return domain.OriginBusiness, nil
	case r.BelongsTo(actorID):
		return domain.OriginClient, nil
	default:
		uc.logger.Warn("RescheduleReservation: reservation id=%d not visible to user=%d", r.ID, actorID)
		return "", ErrReservationNotFound
	}
}

func (uc *UseCase) setStatus(ctx context.Context, id int64, from, to domain.ReservationStatus, at time.Time) error {
	return uc.txManager.Do(ctx, func(txCtx context.Context) error {
		return uc.reservationRepo.UpdateStatusIf(txCtx, id, from, to, at)
	})
}

// publishCancelled фиксирует в outbox отмену исходного бронирования, которое не удалось вернуть
func (uc *UseCase) publishCancelled(ctx context.Context, original *domain.Reservation, now time.Time) {
	cancelled := *original
	cancelled.Status = domain.StatusCancelled
	cancelled.UpdatedAt = now

	event, err := domain.NewReservationEvent(domain.EventReservationCancelled, &cancelled, nil, now)
	if err == nil {
		err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
			return uc.outboxRepo.Insert(txCtx, event)
		})
	}
	if err != nil {
		uc.logger.Error("RescheduleReservation: failed to write cancelled event for id=%d: %v", original.ID, err)
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrPartialFailure):
		return metrics.ResultPartialFailure
	case errors.Is(err, create_reservation.ErrSlotNotAvailable):
		return metrics.ResultConflict
	case errors.Is(err, ErrInternal), errors.Is(err, create_reservation.ErrInternal):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}
