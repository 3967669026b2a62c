package models

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модели

// ReplaceScheduleRequest запрос на замену недельного расписания.
// Отсутствующие дни считаются выходными
type ReplaceScheduleRequest struct {
	UserID     int64               `json:"userId"`
	BusinessID int64               `json:"businessId"`
	Schedule   domain.WeekSchedule `json:"schedule"`
}

// Response модели

// DayScheduleResponse расписание дня
type DayScheduleResponse struct {
	Weekday   string             `json:"weekday"`
	Open      bool               `json:"open"`
	Intervals []domain.TimeRange `json:"intervals"`
}

// ScheduleResponse нормализованное расписание, дни по порядку с понедельника
type ScheduleResponse struct {
	BusinessID int64                 `json:"businessId"`
	Days       []DayScheduleResponse `json:"days"`
}

// FromDomainSchedule конвертирует нормализованное расписание в ответ
func FromDomainSchedule(businessID int64, schedule domain.WeekSchedule) *ScheduleResponse {
	days := make([]DayScheduleResponse, 0, len(domain.Weekdays))
	for _, wd := range domain.Weekdays {
		day := schedule[wd]
		intervals := day.Intervals
		if intervals == nil {
			intervals = []domain.TimeRange{}
		}
		days = append(days, DayScheduleResponse{
			Weekday:   string(wd),
			Open:      day.Open,
			Intervals: intervals,
		})
	}
	return &ScheduleResponse{
		BusinessID: businessID,
		Days:       days,
	}
}
