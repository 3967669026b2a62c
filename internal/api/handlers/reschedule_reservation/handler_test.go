package reschedule_reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	rescheduleReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/reschedule_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *rescheduleReservation.Request) (*rescheduleReservation.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rescheduleReservation.Response), args.Error(1)
}

func patch(uc *mockUseCase, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Handle("/reservations/{reservationId}/reschedule", middleware.Auth(http.HandlerFunc(NewHandler(uc, logger.NewNop()).Handle)))
	req := httptest.NewRequest(http.MethodPatch, "/reservations/10/reschedule", strings.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "5")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"date":"2025-10-14","startTime":"11:00"}`

func TestHandle_Success(t *testing.T) {
	uc := &mockUseCase{}
	start := time.Date(2025, 10, 14, 11, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, &rescheduleReservation.Request{
		ReservationID: 10,
		ActorID:       5,
		Date:          time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC),
		StartTime:     "11:00",
	}).Return(&rescheduleReservation.Response{
		PreviousID: 10,
		Reservation: &domain.Reservation{
			ID: 11, StartAt: start, EndAt: start.Add(30 * time.Minute), Status: domain.StatusConfirmed,
			CreatedAt: start.Add(-24 * time.Hour),
		},
	}, nil)

	rec := patch(uc, validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	var body RescheduleReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(10), body.PreviousID)
	assert.Equal(t, int64(11), body.Reservation.ID)
}

func TestHandle_PartialFailureHasDistinctCode(t *testing.T) {
	uc := &mockUseCase{}
	err := fmt.Errorf("%w: reservation id=10: %w; restore failed: overlap",
		rescheduleReservation.ErrPartialFailure, createReservation.ErrSlotNotAvailable)
	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, err)

	rec := patch(uc, validBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodePartialFailure, body.Code)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		ucErr    error
		wantCode int
	}{
		{name: "bad body", body: `[]`, wantCode: http.StatusBadRequest},
		{name: "bad time", body: `{"date":"2025-10-14","startTime":"11"}`, wantCode: http.StatusBadRequest},
		{name: "not found", body: validBody, ucErr: rescheduleReservation.ErrReservationNotFound, wantCode: http.StatusNotFound},
		{name: "someone else's reservation", body: validBody, ucErr: rescheduleReservation.ErrReservationNotFound, wantCode: http.StatusNotFound},
		{name: "cannot reschedule", body: validBody, ucErr: rescheduleReservation.ErrCannotReschedule, wantCode: http.StatusConflict},
		{name: "slot taken, original restored", body: validBody, ucErr: createReservation.ErrSlotNotAvailable, wantCode: http.StatusConflict},
		{name: "off grid", body: validBody, ucErr: createReservation.ErrInvalidTimeSlot, wantCode: http.StatusBadRequest},
		{name: "service removed from catalog", body: validBody, ucErr: createReservation.ErrServiceNotFound, wantCode: http.StatusBadRequest},
		{name: "internal", body: validBody, ucErr: rescheduleReservation.ErrInternal, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			if tt.ucErr != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.ucErr)
			}

			rec := patch(uc, tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.ucErr != nil {
				assert.NotContains(t, rec.Body.String(), "partial_failure")
			}
		})
	}
}
