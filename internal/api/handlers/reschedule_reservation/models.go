package reschedule_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	rescheduleReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/reschedule_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// RescheduleReservationRequest HTTP request model
type RescheduleReservationRequest struct {
	Date      string `json:"date"`      // "2025-10-15"
	StartTime string `json:"startTime"` // "10:00"
}

// RescheduleReservationResponse HTTP response model
type RescheduleReservationResponse struct {
	PreviousID  int64                       `json:"previousId"`
	Reservation *models.ReservationResponse `json:"reservation"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleReservationRequest) ToUseCaseRequest(reservationID, userID int64) (*rescheduleReservation.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	return &rescheduleReservation.Request{
		ReservationID: reservationID,
		ActorID:       userID,
		Date:          date,
		StartTime:     startTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleReservation.Response) *RescheduleReservationResponse {
	return &RescheduleReservationResponse{
		PreviousID:  resp.PreviousID,
		Reservation: models.FromDomainReservation(resp.Reservation, resp.Reservation.CreatedAt),
	}
}
