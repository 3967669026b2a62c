package create_reservation

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var (
	errInvalidDate     = errors.New("invalid date")
	errInvalidTime     = errors.New("invalid start time")
	errMissingClientID = errors.New("clientId is required for business origin")
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	BusinessID int64  `json:"businessId"`
	ServiceID  int64  `json:"serviceId"`
	ClientID   *int64 `json:"clientId,omitempty"` // только для ручной записи владельцем
	Date       string `json:"date"`               // "2025-10-15"
	StartTime  string `json:"startTime"`          // "10:00"
	Origin     string `json:"origin,omitempty"`   // client (по умолчанию) | business
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) (*createReservation.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	origin := domain.OriginClient
	if r.Origin != "" {
		origin = domain.ReservationOrigin(r.Origin)
	}

	clientID := userID
	if origin == domain.OriginBusiness {
		if r.ClientID == nil {
			return nil, errMissingClientID
		}
		clientID = *r.ClientID
	}

	return &createReservation.Request{
		ActorID:    userID,
		ClientID:   clientID,
		BusinessID: r.BusinessID,
		ServiceID:  r.ServiceID,
		Date:       date,
		StartTime:  startTime,
		Origin:     origin,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response.
// Только что созданное бронирование ещё не завершено, статус считается на момент создания
func FromUseCaseResponse(resp *createReservation.Response) *models.ReservationResponse {
	return models.FromDomainReservation(resp.Reservation, resp.Reservation.CreatedAt)
}
