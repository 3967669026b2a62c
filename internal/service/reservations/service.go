package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	catalogClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
)

const operationCancel = "cancel"

// Service сервис для работы с бронированиями
type Service struct {
	reservationRepo ReservationRepository
	outboxRepo      OutboxRepository
	catalogClient   CatalogClient
	txManager       TransactionManager
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	outboxRepo OutboxRepository,
	catalogClient CatalogClient,
	txManager TransactionManager,
	metrics MetricsRecorder,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		outboxRepo:      outboxRepo,
		catalogClient:   catalogClient,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

func (s *Service) now() time.Time {
	return domain.WallClock(s.timeProvider.Now())
}

// GetByID получает бронирование по ID
// Доступно клиенту бронирования и владельцам бизнеса
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, reservation, userID); err != nil {
		s.logger.Warn("GetByID: reservation id=%d not visible to user=%d", id, userID)
		return nil, err
	}

	return models.FromDomainReservation(reservation, s.now()), nil
}

// GetClientReservations история бронирований клиента, опционально по статусу
func (s *Service) GetClientReservations(ctx context.Context, req *models.GetClientReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetClientReservations: fetching reservations for client=%d, status=%v", req.ClientID, req.Status)

	wanted, stored, err := parseStatus(req.Status)
	if err != nil {
		s.logger.Warn("GetClientReservations: invalid status=%s for client=%d", *req.Status, req.ClientID)
		return nil, err
	}

	reservations, err := s.reservationRepo.GetByClientID(ctx, domain.ClientReservationsFilter{
		ClientID:   req.ClientID,
		BusinessID: req.BusinessID,
		Status:     stored,
	})
	if err != nil {
		s.logger.Error("GetClientReservations: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientReservations - repository error: %v", ErrInternal, err)
	}

	now := s.now()
	reservations = filterEffective(reservations, wanted, now)

	s.logger.Info("GetClientReservations: successfully fetched %d reservations for client=%d", len(reservations), req.ClientID)
	return models.FromDomainReservationList(reservations, now), nil
}

// GetBusinessReservations календарь бизнеса за период
// Доступно только владельцам бизнеса
//
// Примеры использования:
// - Бронирования на сегодня: From и To не указаны
// - Бронирования на дату: только From
// - Бронирования за период: From и To, не длиннее MaxCalendarRangeDays
// - Включая отменённые: IncludeCancelled = true
func (s *Service) GetBusinessReservations(ctx context.Context, req *models.GetBusinessReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetBusinessReservations: fetching reservations for business=%d, user=%d", req.BusinessID, req.UserID)

	if err := s.checkOwnerAccess(ctx, req.BusinessID, req.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	filter, wanted, err := toDomainFilter(req, now)
	if err != nil {
		s.logger.Warn("GetBusinessReservations: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, err
	}

	reservations, err := s.reservationRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessReservations: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessReservations - repository error: %v", ErrInternal, err)
	}

	reservations = filterEffective(reservations, wanted, now)

	s.logger.Info("GetBusinessReservations: successfully fetched %d reservations for business=%d (%s - %s)",
		len(reservations), req.BusinessID, filter.From.Format(domain.DateFormat), filter.To.Format(domain.DateFormat))
	return models.FromDomainReservationList(reservations, now), nil
}

// Cancel отменяет бронирование
// Клиент отменяет своё бронирование, владелец бизнеса любое бронирование бизнеса.
// Отмена и событие в outbox записываются в одной транзакции
func (s *Service) Cancel(ctx context.Context, reservationID int64, userID int64) error {
	err := s.cancel(ctx, reservationID, userID)
	s.metrics.RecordReservationOperation(operationCancel, cancelResult(err))
	return err
}

func (s *Service) cancel(ctx context.Context, reservationID int64, userID int64) error {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", reservationID, userID)

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("Cancel: reservation id=%d not found", reservationID)
			return ErrReservationNotFound
		}
		s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, reservation, userID); err != nil {
		s.logger.Warn("Cancel: reservation id=%d not visible to user=%d", reservationID, userID)
		return err
	}

	now := s.now()
	if !reservation.CanBeCancelled(now) {
		s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", reservationID, reservation.EffectiveStatus(now))
		return ErrCannotCancel
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.reservationRepo.UpdateStatusIf(txCtx, reservationID, domain.StatusConfirmed, domain.StatusCancelled, now); err != nil {
			return err
		}

		cancelled := *reservation
		cancelled.Status = domain.StatusCancelled
		cancelled.UpdatedAt = now

		event, err := domain.NewReservationEvent(domain.EventReservationCancelled, &cancelled, nil, now)
		if err != nil {
			return err
		}
		return s.outboxRepo.Insert(txCtx, event)
	})
	if err != nil {
		switch {
		case errors.Is(err, reservationRepo.ErrReservationNotFound):
			s.logger.Warn("Cancel: reservation id=%d not found during cancellation", reservationID)
			return ErrReservationNotFound
		case errors.Is(err, reservationRepo.ErrStatusMismatch):
			s.logger.Warn("Cancel: reservation id=%d changed concurrently", reservationID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: failed to cancel reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", reservationID)
	return nil
}

// GetActive ближайшее предстоящее или идущее бронирование клиента, nil если такого нет
func (s *Service) GetActive(ctx context.Context, clientID int64) (*models.ReservationResponse, error) {
	return s.selectForClient(ctx, "GetActive", clientID, SelectActive)
}

// GetLast последнее завершённое бронирование клиента, nil если такого нет
func (s *Service) GetLast(ctx context.Context, clientID int64) (*models.ReservationResponse, error) {
	return s.selectForClient(ctx, "GetLast", clientID, SelectLast)
}

func (s *Service) selectForClient(
	ctx context.Context,
	op string,
	clientID int64,
	selectFn func([]*domain.Reservation, time.Time) *domain.Reservation,
) (*models.ReservationResponse, error) {
	s.logger.Info("%s: selecting reservation for client=%d", op, clientID)

	reservations, err := s.confirmedForClient(ctx, op, domain.ClientReservationsFilter{ClientID: clientID})
	if err != nil {
		return nil, err
	}

	now := s.now()
	selected := selectFn(reservations, now)
	if selected == nil {
		s.logger.Info("%s: no reservation for client=%d", op, clientID)
		return nil, nil
	}

	s.logger.Info("%s: selected reservation id=%d for client=%d", op, selected.ID, clientID)
	return models.FromDomainReservation(selected, now), nil
}

// GetLatestAtBusiness бронирование клиента в бизнесе для карточки бизнеса:
// ближайшее предстоящее, иначе последнее завершённое, nil если нет ни того ни другого
func (s *Service) GetLatestAtBusiness(ctx context.Context, clientID, businessID int64) (*models.LatestReservationResponse, error) {
	const op = "GetLatestAtBusiness"
	s.logger.Info("%s: selecting reservation for client=%d at business=%d", op, clientID, businessID)

	reservations, err := s.confirmedForClient(ctx, op, domain.ClientReservationsFilter{
		ClientID:   clientID,
		BusinessID: &businessID,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	selected, kind := SelectLatest(reservations, now)
	if selected == nil {
		s.logger.Info("%s: no reservation for client=%d at business=%d", op, clientID, businessID)
		return nil, nil
	}

	s.logger.Info("%s: selected %s reservation id=%d for client=%d", op, kind, selected.ID, clientID)
	return &models.LatestReservationResponse{
		Type:        string(kind),
		Reservation: models.FromDomainReservation(selected, now),
	}, nil
}

// Вспомогательные методы

// confirmedForClient подтверждённые бронирования клиента по фильтру
func (s *Service) confirmedForClient(ctx context.Context, op string, filter domain.ClientReservationsFilter) ([]*domain.Reservation, error) {
	confirmed := domain.StatusConfirmed
	filter.Status = &confirmed

	reservations, err := s.reservationRepo.GetByClientID(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error for client=%d: %v", op, filter.ClientID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservations, nil
}

// checkUserAccess клиент бронирования или владелец бизнеса.
// Для остальных бронирование не существует: ErrReservationNotFound
func (s *Service) checkUserAccess(ctx context.Context, r *domain.Reservation, userID int64) error {
	if r.BelongsTo(userID) {
		return nil
	}
	if err := s.checkOwnerAccess(ctx, r.BusinessID, userID); err != nil {
		if errors.Is(err, ErrInternal) {
			return err
		}
		return ErrReservationNotFound
	}
	return nil
}

// checkOwnerAccess проверяет, что пользователь является владельцем бизнеса
func (s *Service) checkOwnerAccess(ctx context.Context, businessID int64, userID int64) error {
	business, err := s.catalogClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			s.logger.Warn("checkOwnerAccess: business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("checkOwnerAccess: failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: checkOwnerAccess - failed to get business: %v", ErrInternal, err)
	}

	if !business.IsOwner(userID) {
		s.logger.Warn("checkOwnerAccess: user=%d is not an owner of business=%d", userID, businessID)
		return ErrAccessDenied
	}
	return nil
}

// parseStatus возвращает запрошенный статус и статус для выборки из БД:
// finalized хранится как confirmed
func parseStatus(raw *string) (*domain.ReservationStatus, *domain.ReservationStatus, error) {
	if raw == nil || *raw == "" {
		return nil, nil, nil
	}
	status, err := models.ToDomainReservationStatus(*raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	stored := status
	if status == domain.StatusFinalized {
		stored = domain.StatusConfirmed
	}
	return &status, &stored, nil
}

func toDomainFilter(req *models.GetBusinessReservationsRequest, now time.Time) (domain.BusinessReservationsFilter, *domain.ReservationStatus, error) {
	from := domain.DateOnly(now)
	if req.From != nil {
		from = domain.DateOnly(*req.From)
	}
	to := from.AddDate(0, 0, 1)
	if req.To != nil {
		to = domain.DateOnly(*req.To)
	}

	if !to.After(from) {
		return domain.BusinessReservationsFilter{}, nil, fmt.Errorf("%w: 'to' must be after 'from'", ErrInvalidTimeRange)
	}
	if to.Sub(from) > time.Duration(domain.MaxCalendarRangeDays)*24*time.Hour {
		return domain.BusinessReservationsFilter{}, nil, fmt.Errorf("%w: period is longer than %d days", ErrInvalidTimeRange, domain.MaxCalendarRangeDays)
	}

	wanted, stored, err := parseStatus(req.Status)
	if err != nil {
		return domain.BusinessReservationsFilter{}, nil, err
	}

	return domain.BusinessReservationsFilter{
		BusinessID:       req.BusinessID,
		From:             &from,
		To:               &to,
		Status:           stored,
		IncludeCancelled: req.IncludeCancelled,
	}, wanted, nil
}

func filterEffective(rs []*domain.Reservation, wanted *domain.ReservationStatus, now time.Time) []*domain.Reservation {
	if wanted == nil {
		return rs
	}
	out := make([]*domain.Reservation, 0, len(rs))
	for _, r := range rs {
		if r.EffectiveStatus(now) == *wanted {
			out = append(out, r)
		}
	}
	return out
}

func cancelResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrCannotCancel):
		return metrics.ResultConflict
	case errors.Is(err, ErrInternal):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}
