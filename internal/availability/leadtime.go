package availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// MinBookableMinute минута суток, раньше которой на сегодня записаться нельзя:
// текущее время, округлённое вверх до ближайшего кратного durationMinutes.
// Секунды считаются выходом за границу: 09:30:01 при шаге 30 даёт 10:00
func MinBookableMinute(now time.Time, durationMinutes int) int {
	minutes := now.Hour()*60 + now.Minute()
	if durationMinutes <= 0 {
		return minutes
	}

	if now.Second() > 0 || now.Nanosecond() > 0 {
		minutes++
	}

	if rem := minutes % durationMinutes; rem != 0 {
		minutes += durationMinutes - rem
	}
	return minutes
}

// FilterPast убирает слоты, которые на сегодня уже нельзя забронировать.
// Для будущих дат слоты возвращаются без изменений
func FilterPast(slots []types.TimeString, targetDate time.Time, durationMinutes int, now time.Time) []types.TimeString {
	if domain.DateOnly(targetDate).After(domain.DateOnly(now)) {
		return slots
	}

	// прошедшие даты отсекаются раньше, здесь к ним применяется то же правило
	minMinute := MinBookableMinute(now, durationMinutes)

	result := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		minutes, err := slot.Minutes()
		if err != nil {
			continue
		}
		if minutes >= minMinute {
			result = append(result, slot)
		}
	}
	return result
}
