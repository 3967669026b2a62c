package domain

import "time"

// ReservationStatus статус бронирования
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"

	// StatusFinalized вычисляемый статус: подтверждённое бронирование, которое уже закончилось.
	// В БД не сохраняется
	StatusFinalized ReservationStatus = "finalized"
)

// ReservationOrigin кто создал бронирование
type ReservationOrigin string

const (
	OriginClient   ReservationOrigin = "client"   // клиент через сетку слотов
	OriginBusiness ReservationOrigin = "business" // ручная запись бизнесом
)

// IsValid проверяет значение источника
func (o ReservationOrigin) IsValid() bool {
	return o == OriginClient || o == OriginBusiness
}

// Interval полуоткрытый интервал времени [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Reservation бронирование
type Reservation struct {
	ID         int64
	BusinessID int64
	ServiceID  int64
	ClientID   int64
	StartAt    time.Time
	EndAt      time.Time
	Status     ReservationStatus
	Origin     ReservationOrigin

	// Денормализованные данные на момент бронирования
	ClientName      string
	BusinessName    string
	ServiceName     string
	DurationMinutes int
	Price           float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval возвращает интервал бронирования
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.StartAt, End: r.EndAt}
}

// EffectiveStatus статус с учётом текущего времени:
// подтверждённое бронирование с окончанием в прошлом считается завершённым
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if r.Status == StatusConfirmed && r.EndAt.Before(now) {
		return StatusFinalized
	}
	return r.Status
}

// IsConfirmed возвращает true для неотменённого бронирования
func (r *Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// CanBeCancelled отменить можно только подтверждённое и ещё не завершённое бронирование
func (r *Reservation) CanBeCancelled(now time.Time) bool {
	return r.EffectiveStatus(now) == StatusConfirmed
}

// BelongsTo проверяет, что бронирование принадлежит клиенту
func (r *Reservation) BelongsTo(clientID int64) bool {
	return r.ClientID == clientID
}

// ClientReservationsFilter фильтр бронирований клиента
type ClientReservationsFilter struct {
	ClientID   int64              // Обязательный параметр
	BusinessID *int64             // Только бронирования в этом бизнесе (опционально)
	Status     *ReservationStatus // Фильтр по хранимому статусу (опционально)
}

// BusinessReservationsFilter фильтр бронирований бизнеса.
// В выборку попадают бронирования, пересекающиеся с периодом [From, To)
type BusinessReservationsFilter struct {
	BusinessID       int64              // Обязательный параметр
	From             *time.Time         // Начало периода (включительно)
	To               *time.Time         // Конец периода (не включительно)
	Status           *ReservationStatus // Фильтр по статусу (опционально)
	IncludeCancelled bool               // Включать ли отменённые бронирования
}

// ForDay фильтр подтверждённых бронирований бизнеса на дату
func ForDay(businessID int64, date time.Time) BusinessReservationsFilter {
	from := DateOnly(date)
	to := from.AddDate(0, 0, 1)
	return BusinessReservationsFilter{
		BusinessID: businessID,
		From:       &from,
		To:         &to,
	}
}

// IsSingleDay проверяет, что фильтр покрывает ровно одни сутки
func (f BusinessReservationsFilter) IsSingleDay() bool {
	return f.From != nil && f.To != nil && f.To.Sub(*f.From) == 24*time.Hour
}
