package reservations

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// SelectActive ближайшее незавершённое подтверждённое бронирование:
// EndAt >= now, минимальный StartAt, при равенстве минимальный ID
func SelectActive(rs []*domain.Reservation, now time.Time) *domain.Reservation {
	var best *domain.Reservation
	for _, r := range rs {
		if !r.IsConfirmed() || r.EndAt.Before(now) {
			continue
		}
		if best == nil || r.StartAt.Before(best.StartAt) ||
			(r.StartAt.Equal(best.StartAt) && r.ID < best.ID) {
			best = r
		}
	}
	return best
}

// LatestKind вид бронирования, выбранного SelectLatest
type LatestKind string

const (
	LatestFuture LatestKind = "future" // предстоящее или идущее
	LatestPast   LatestKind = "past"   // завершённое
)

// SelectLatest сначала SelectActive, если ничего нет, то SelectLast
func SelectLatest(rs []*domain.Reservation, now time.Time) (*domain.Reservation, LatestKind) {
	if r := SelectActive(rs, now); r != nil {
		return r, LatestFuture
	}
	if r := SelectLast(rs, now); r != nil {
		return r, LatestPast
	}
	return nil, ""
}

// SelectLast последнее завершённое подтверждённое бронирование:
// EndAt < now, максимальный StartAt, при равенстве максимальный ID
func SelectLast(rs []*domain.Reservation, now time.Time) *domain.Reservation {
	var best *domain.Reservation
	for _, r := range rs {
		if !r.IsConfirmed() || !r.EndAt.Before(now) {
			continue
		}
		if best == nil || r.StartAt.After(best.StartAt) ||
			(r.StartAt.Equal(best.StartAt) && r.ID > best.ID) {
			best = r
		}
	}
	return best
}
