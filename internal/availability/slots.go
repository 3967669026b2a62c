// Package availability рассчитывает сетку свободных слотов бизнеса на дату
package availability

import (
	"sort"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// GenerateSlots генерирует времена начала слотов длительностью durationMinutes
// внутри интервалов работы дня. Слот попадает в сетку, только если целиком
// помещается в интервал: start + d <= end.
// Интервалы обрабатываются в исходном порядке и не объединяются
func GenerateSlots(day domain.DaySchedule, durationMinutes int) []types.TimeString {
	slots := make([]types.TimeString, 0)
	if !day.Open || durationMinutes <= 0 {
		return slots
	}

	for _, interval := range day.Intervals {
		start, err := interval.Start.Minutes()
		if err != nil {
			continue
		}
		end, err := interval.End.Minutes()
		if err != nil {
			continue
		}

		for cur := start; cur+durationMinutes <= end; cur += durationMinutes {
			slot, err := types.NewTimeStringFromMinutes(cur)
			if err != nil {
				break
			}
			slots = append(slots, slot)
		}
	}

	return slots
}

// SortUnique сортирует слоты по времени и убирает дубликаты
// (появляются при пересекающихся интервалах расписания)
func SortUnique(slots []types.TimeString) []types.TimeString {
	result := make([]types.TimeString, 0, len(slots))
	seen := make(map[types.TimeString]struct{}, len(slots))
	for _, slot := range slots {
		if _, ok := seen[slot]; ok {
			continue
		}
		seen[slot] = struct{}{}
		result = append(result, slot)
	}

	// HH:MM с ведущими нулями сортируется лексикографически
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Contains проверяет, что время начала входит в сетку
func Contains(slots []types.TimeString, start types.TimeString) bool {
	for _, slot := range slots {
		if slot == start {
			return true
		}
	}
	return false
}
