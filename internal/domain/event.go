package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType тип события бронирования
type EventType string

const (
	EventReservationCreated     EventType = "reservation.created"
	EventReservationCancelled   EventType = "reservation.cancelled"
	EventReservationRescheduled EventType = "reservation.rescheduled"
)

const aggregateReservation = "reservation"

// OutboxEvent событие, записываемое в outbox в одной транзакции с изменением
type OutboxEvent struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   string
	EventType     EventType
	Payload       []byte
	CreatedAt     time.Time
}

// ReservationEventPayload тело события о бронировании
type ReservationEventPayload struct {
	ReservationID int64             `json:"reservationId"`
	BusinessID    int64             `json:"businessId"`
	ServiceID     int64             `json:"serviceId"`
	ClientID      int64             `json:"clientId"`
	StartAt       string            `json:"startAt"`
	EndAt         string            `json:"endAt"`
	Status        ReservationStatus `json:"status"`
	PreviousID    *int64            `json:"previousId,omitempty"`
	OccurredAt    string            `json:"occurredAt"`
}

const eventTimeLayout = "2006-01-02T15:04:05"

// NewReservationEvent формирует событие по бронированию.
// previousID задаётся для переноса (ID исходного бронирования)
func NewReservationEvent(eventType EventType, r *Reservation, previousID *int64, occurredAt time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(ReservationEventPayload{
		ReservationID: r.ID,
		BusinessID:    r.BusinessID,
		ServiceID:     r.ServiceID,
		ClientID:      r.ClientID,
		StartAt:       r.StartAt.Format(eventTimeLayout),
		EndAt:         r.EndAt.Format(eventTimeLayout),
		Status:        r.Status,
		PreviousID:    previousID,
		OccurredAt:    occurredAt.Format(eventTimeLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &OutboxEvent{
		EventID:       uuid.NewString(),
		AggregateType: aggregateReservation,
		AggregateID:   strconv.FormatInt(r.ID, 10),
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     occurredAt,
	}, nil
}
