package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/schedule"
	catalogClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	scheduleRepo    ScheduleRepository
	catalogClient   CatalogClient
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	scheduleRepo ScheduleRepository,
	catalogClient CatalogClient,
	metrics MetricsRecorder,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		scheduleRepo:    scheduleRepo,
		catalogClient:   catalogClient,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Закрытый день и полностью занятый день дают пустой список, а не ошибку
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%d, service=%d, date=%s",
		req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := domain.WallClock(uc.timeProvider.Now())
	date := domain.DateOnly(req.Date)

	// 2. Прошедшие даты не бронируются
	if domain.IsDateInPast(date, now) {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", date.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: %s is in the past", ErrInvalidDate, date.Format(domain.DateFormat))
	}

	// 3. Бизнес и услуга из каталога
	if _, err := uc.catalogClient.GetBusiness(ctx, req.BusinessID); err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	service, err := uc.catalogClient.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	response := &Response{
		Date:            date,
		BusinessID:      req.BusinessID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
	}

	// 4. Расписание на день недели
	schedule, err := uc.loadSchedule(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}

	day := schedule.Day(date)
	if !day.Open {
		uc.logger.Info("GetAvailableSlots: business=%d is closed on %s", req.BusinessID, date.Format(domain.DateFormat))
		response.Slots = []types.TimeString{}
		return response, nil
	}

	// 5. Сетка слотов
	slots := availability.GenerateSlots(day, service.DurationMinutes)

	// 6. Убираем пересечения с подтверждёнными бронированиями дня
	reservations, err := uc.reservationRepo.GetByBusinessWithFilter(ctx, domain.ForDay(req.BusinessID, date))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}
	slots = availability.FilterConflicts(date, slots, service.DurationMinutes, availability.BusyIntervals(reservations))

	// 7. На сегодня убираем уже прошедшие слоты
	slots = availability.FilterPast(slots, date, service.DurationMinutes, now)

	response.Slots = availability.SortUnique(slots)
	uc.metrics.RecordSlotsServed(len(response.Slots))

	uc.logger.Info("GetAvailableSlots: %d slots for business=%d, service=%d, date=%s",
		len(response.Slots), req.BusinessID, req.ServiceID, date.Format(domain.DateFormat))

	return response, nil
}

// loadSchedule загружает и нормализует расписание.
// Бизнес без расписания закрыт всю неделю
func (uc *UseCase) loadSchedule(ctx context.Context, businessID int64) (domain.WeekSchedule, error) {
	raw, err := uc.scheduleRepo.Get(ctx, businessID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get schedule of business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	schedule, err := domain.NormalizeWeekSchedule(raw)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: stored schedule of business=%d is invalid: %v", businessID, err)
		return nil, fmt.Errorf("%w: invalid stored schedule: %v", ErrInternal, err)
	}

	return schedule, nil
}
