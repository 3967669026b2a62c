package availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы, которые только касаются границами, не пересекаются
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FilterConflicts убирает слоты, у которых [start, start+d) пересекается
// хотя бы с одним занятым интервалом. busy должен содержать только
// подтверждённые бронирования
func FilterConflicts(date time.Time, slots []types.TimeString, durationMinutes int, busy []domain.Interval) []types.TimeString {
	free := make([]types.TimeString, 0, len(slots))
	duration := time.Duration(durationMinutes) * time.Minute

	for _, slot := range slots {
		start, err := slot.OnDate(domain.DateOnly(date))
		if err != nil {
			continue
		}

		candidate := domain.Interval{Start: start, End: start.Add(duration)}
		if _, conflict := FindConflict(candidate, busy); conflict {
			continue
		}
		free = append(free, slot)
	}

	return free
}

// FindConflict возвращает первый занятый интервал, пересекающийся с candidate
func FindConflict(candidate domain.Interval, busy []domain.Interval) (domain.Interval, bool) {
	for _, b := range busy {
		if Overlaps(candidate.Start, candidate.End, b.Start, b.End) {
			return b, true
		}
	}
	return domain.Interval{}, false
}

// BusyIntervals собирает интервалы подтверждённых бронирований
func BusyIntervals(reservations []*domain.Reservation) []domain.Interval {
	busy := make([]domain.Interval, 0, len(reservations))
	for _, r := range reservations {
		if !r.IsConfirmed() {
			continue
		}
		busy = append(busy, r.Interval())
	}
	return busy
}
