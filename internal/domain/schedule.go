package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ErrInvalidTimeRange возвращается, когда начало интервала не раньше его конца
var ErrInvalidTimeRange = errors.New("domain: invalid time range")

// Weekday ключ дня недели в расписании
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays все дни недели, начиная с понедельника
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf переводит time.Weekday в ключ расписания
func WeekdayOf(date time.Time) Weekday {
	switch date.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// IsValid проверяет, что ключ является днём недели
func (w Weekday) IsValid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// TimeRange интервал работы [Start, End) внутри дня
type TimeRange struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// Validate проверяет формат и что Start < End
func (r TimeRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidTimeRange, err)
	}
	if err := r.End.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidTimeRange, err)
	}
	if !r.Start.IsBefore(r.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidTimeRange, r.Start, r.End)
	}
	return nil
}

// DaySchedule расписание одного дня
type DaySchedule struct {
	Open      bool        `json:"open"`
	Intervals []TimeRange `json:"intervals"`
}

// ClosedDay возвращает расписание закрытого дня
func ClosedDay() DaySchedule {
	return DaySchedule{Open: false, Intervals: []TimeRange{}}
}

// WeekSchedule расписание работы бизнеса по дням недели
type WeekSchedule map[Weekday]DaySchedule

// Day возвращает расписание на день недели даты
func (w WeekSchedule) Day(date time.Time) DaySchedule {
	day, ok := w[WeekdayOf(date)]
	if !ok {
		return ClosedDay()
	}
	return day
}

// NormalizeWeekSchedule приводит частичное расписание к полному:
// все 7 дней присутствуют, отсутствующие дни и дни без интервалов закрыты,
// у закрытого дня интервалов нет. Интервалы с Start >= End отклоняются.
// Ключи, не являющиеся днями недели, отбрасываются
func NormalizeWeekSchedule(raw WeekSchedule) (WeekSchedule, error) {
	normalized := make(WeekSchedule, len(Weekdays))

	for _, weekday := range Weekdays {
		day, ok := raw[weekday]
		if !ok || len(day.Intervals) == 0 || !day.Open {
			normalized[weekday] = ClosedDay()
			continue
		}

		intervals := make([]TimeRange, 0, len(day.Intervals))
		for _, interval := range day.Intervals {
			if err := interval.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", weekday, err)
			}
			intervals = append(intervals, interval)
		}

		normalized[weekday] = DaySchedule{Open: true, Intervals: intervals}
	}

	return normalized, nil
}
