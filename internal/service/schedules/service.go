package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/schedule"
	catalogClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/internal/service/schedules/models"
)

// Service сервис для работы с недельным расписанием бизнеса
type Service struct {
	scheduleRepo  ScheduleRepository
	catalogClient CatalogClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalogClient CatalogClient,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:  scheduleRepo,
		catalogClient: catalogClient,
		timeProvider:  timeProvider,
		logger:        logger,
	}
}

// Get возвращает нормализованное расписание бизнеса
// Публичный метод. Бизнес без сохранённого расписания закрыт всю неделю
func (s *Service) Get(ctx context.Context, businessID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for business=%d", businessID)

	raw, err := s.scheduleRepo.Get(ctx, businessID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		s.logger.Error("Get: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	schedule, err := domain.NormalizeWeekSchedule(raw)
	if err != nil {
		s.logger.Error("Get: stored schedule of business=%d is invalid: %v", businessID, err)
		return nil, fmt.Errorf("%w: Get - invalid stored schedule: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(businessID, schedule), nil
}

// Replace заменяет расписание целиком
// Доступно только владельцам бизнеса
func (s *Service) Replace(ctx context.Context, req *models.ReplaceScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Replace: replacing schedule for business=%d by user=%d", req.BusinessID, req.UserID)

	// 1. Валидируем и нормализуем расписание
	schedule, err := s.validateSchedule(req.Schedule)
	if err != nil {
		s.logger.Warn("Replace: validation failed for business=%d: %v", req.BusinessID, err)
		return nil, err
	}

	// 2. Проверяем права доступа (только владелец бизнеса)
	business, err := s.catalogClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			s.logger.Warn("Replace: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("Replace: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	if !business.IsOwner(req.UserID) {
		s.logger.Warn("Replace: user=%d is not an owner of business=%d", req.UserID, req.BusinessID)
		return nil, ErrAccessDenied
	}

	// 3. Сохраняем
	now := domain.WallClock(s.timeProvider.Now())
	if err := s.scheduleRepo.Upsert(ctx, req.BusinessID, schedule, now); err != nil {
		s.logger.Error("Replace: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: Replace - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Replace: successfully replaced schedule for business=%d", req.BusinessID)
	return models.FromDomainSchedule(req.BusinessID, schedule), nil
}

// validateSchedule проверяет ключи дней и число интервалов, затем нормализует
func (s *Service) validateSchedule(raw domain.WeekSchedule) (domain.WeekSchedule, error) {
	for wd, day := range raw {
		if !wd.IsValid() {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, wd)
		}
		if len(day.Intervals) > domain.MaxIntervalsPerDay {
			return nil, fmt.Errorf("%w: %s has more than %d intervals", ErrInvalidInput, wd, domain.MaxIntervalsPerDay)
		}
	}

	schedule, err := domain.NormalizeWeekSchedule(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return schedule, nil
}
