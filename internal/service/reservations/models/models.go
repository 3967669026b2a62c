package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// GetClientReservationsRequest запрос на получение бронирований клиента
type GetClientReservationsRequest struct {
	ClientID   int64   `json:"clientId"`
	BusinessID *int64  `json:"businessId,omitempty"` // Только бронирования в этом бизнесе
	Status     *string `json:"status,omitempty"`
}

// GetBusinessReservationsRequest запрос на получение календаря бизнеса
type GetBusinessReservationsRequest struct {
	UserID           int64      `json:"userId"`
	BusinessID       int64      `json:"businessId"`
	From             *time.Time `json:"from,omitempty"`             // Начало периода, по умолчанию сегодня
	To               *time.Time `json:"to,omitempty"`               // Конец периода (не включительно), по умолчанию From + 1 день
	Status           *string    `json:"status,omitempty"`           // confirmed | cancelled | finalized
	IncludeCancelled bool       `json:"includeCancelled,omitempty"` // Включить отменённые бронирования
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"businessId"`
	ServiceID       int64   `json:"serviceId"`
	ClientID        int64   `json:"clientId"`
	Date            string  `json:"date"`      // "2025-10-15"
	StartTime       string  `json:"startTime"` // "10:00"
	EndTime         string  `json:"endTime"`   // "10:30"
	StartAt         string  `json:"startAt"`   // "2025-10-15T10:00:00"
	EndAt           string  `json:"endAt"`
	Status          string  `json:"status"` // статус с учётом текущего времени
	Origin          string  `json:"origin"`
	ClientName      string  `json:"clientName,omitempty"`
	BusinessName    string  `json:"businessName"`
	ServiceName     string  `json:"serviceName"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// LatestReservationResponse последнее бронирование клиента в бизнесе.
// Type: future (предстоящее или идущее) | past (завершённое)
type LatestReservationResponse struct {
	Type        string               `json:"type"`
	Reservation *ReservationResponse `json:"reservation"`
}

// ReservationListResponse список бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

const dateTimeLayout = "2006-01-02T15:04:05"

// FromDomainReservation конвертирует доменную модель в ответ, вычисляя статус на момент now
func FromDomainReservation(r *domain.Reservation, now time.Time) *ReservationResponse {
	if r == nil {
		return nil
	}
	return &ReservationResponse{
		ID:              r.ID,
		BusinessID:      r.BusinessID,
		ServiceID:       r.ServiceID,
		ClientID:        r.ClientID,
		Date:            r.StartAt.Format(domain.DateFormat),
		StartTime:       r.StartAt.Format(domain.TimeFormat),
		EndTime:         r.EndAt.Format(domain.TimeFormat),
		StartAt:         r.StartAt.Format(dateTimeLayout),
		EndAt:           r.EndAt.Format(dateTimeLayout),
		Status:          string(r.EffectiveStatus(now)),
		Origin:          string(r.Origin),
		ClientName:      r.ClientName,
		BusinessName:    r.BusinessName,
		ServiceName:     r.ServiceName,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		CreatedAt:       r.CreatedAt.Format(dateTimeLayout),
		UpdatedAt:       r.UpdatedAt.Format(dateTimeLayout),
	}
}

// FromDomainReservationList конвертирует список бронирований
func FromDomainReservationList(rs []*domain.Reservation, now time.Time) *ReservationListResponse {
	list := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		list = append(list, *FromDomainReservation(r, now))
	}
	return &ReservationListResponse{
		Reservations: list,
		Total:        len(list),
	}
}

// ToDomainReservationStatus проверяет строковый статус
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	switch s := domain.ReservationStatus(status); s {
	case domain.StatusConfirmed, domain.StatusCancelled, domain.StatusFinalized:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}
