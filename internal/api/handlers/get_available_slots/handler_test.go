package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*getAvailableSlots.Response), args.Error(1)
}

func serve(uc *mockUseCase, url string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/businesses/{businessId}/services/{serviceId}/available-slots", NewHandler(uc, logger.NewNop()).Handle)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHandle_Success(t *testing.T) {
	uc := &mockUseCase{}
	monday := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, &getAvailableSlots.Request{BusinessID: 1, ServiceID: 2, Date: monday}).
		Return(&getAvailableSlots.Response{
			Date: monday, BusinessID: 1, ServiceID: 2, DurationMinutes: 30,
			Slots: []types.TimeString{"09:00", "09:30"},
		}, nil)

	rec := serve(uc, "/businesses/1/services/2/available-slots?date=2025-10-13")

	require.Equal(t, http.StatusOK, rec.Code)
	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"09:00", "09:30"}, body.Slots)
	assert.Equal(t, "2025-10-13", body.Date)
}

func TestHandle_ClosedDayIsEmptyArray(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, mock.Anything).
		Return(&getAvailableSlots.Response{Slots: []types.TimeString{}}, nil)

	rec := serve(uc, "/businesses/1/services/2/available-slots?date=2025-10-19")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		ucErr    error
		wantCode int
	}{
		{name: "bad business id", url: "/businesses/x/services/2/available-slots?date=2025-10-13", wantCode: http.StatusBadRequest},
		{name: "missing date", url: "/businesses/1/services/2/available-slots", wantCode: http.StatusBadRequest},
		{name: "bad date", url: "/businesses/1/services/2/available-slots?date=13.10.2025", wantCode: http.StatusBadRequest},
		{name: "business not found", url: "/businesses/1/services/2/available-slots?date=2025-10-13", ucErr: getAvailableSlots.ErrBusinessNotFound, wantCode: http.StatusBadRequest},
		{name: "service not found", url: "/businesses/1/services/2/available-slots?date=2025-10-13", ucErr: getAvailableSlots.ErrServiceNotFound, wantCode: http.StatusBadRequest},
		{name: "past date", url: "/businesses/1/services/2/available-slots?date=2025-10-13", ucErr: getAvailableSlots.ErrInvalidDate, wantCode: http.StatusBadRequest},
		{name: "internal", url: "/businesses/1/services/2/available-slots?date=2025-10-13", ucErr: getAvailableSlots.ErrInternal, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			if tt.ucErr != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.ucErr)
			}

			rec := serve(uc, tt.url)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
