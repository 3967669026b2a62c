package get_business_schedule

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/service/schedules/models"
)

type ScheduleService interface {
	Get(ctx context.Context, businessID int64) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
