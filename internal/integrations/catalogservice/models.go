package catalogservice

import "github.com/m04kA/SMC-ReservationService/internal/domain"

// Business модель бизнеса из каталога
type Business struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	OwnerIDs []int64 `json:"owner_ids"`
}

// ToDomain конвертирует в доменную модель
func (b *Business) ToDomain() *domain.Business {
	return &domain.Business{
		ID:       b.ID,
		Name:     b.Name,
		OwnerIDs: b.OwnerIDs,
	}
}

// Service модель услуги из каталога
type Service struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"business_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// ToDomain конвертирует в доменную модель
func (s *Service) ToDomain() *domain.Service {
	return &domain.Service{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
	}
}
