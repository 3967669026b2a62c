package update_business_schedule

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/schedules/models"
)

// UpdateBusinessScheduleRequest HTTP request model
// Ключи schedule: monday..sunday, отсутствующие дни считаются выходными
type UpdateBusinessScheduleRequest struct {
	Schedule domain.WeekSchedule `json:"schedule"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateBusinessScheduleRequest) ToServiceRequest(businessID, userID int64) *models.ReplaceScheduleRequest {
	return &models.ReplaceScheduleRequest{
		UserID:     userID,
		BusinessID: businessID,
		Schedule:   r.Schedule,
	}
}
