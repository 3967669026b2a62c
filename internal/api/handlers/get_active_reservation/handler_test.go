package get_active_reservation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) GetActive(ctx context.Context, clientID int64) (*models.ReservationResponse, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReservationResponse), args.Error(1)
}

func serve(svc *mockService) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/clients/me/reservations/active", nil)
	req.Header.Set(middleware.HeaderUserID, "5")
	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(NewHandler(svc, logger.NewNop()).Handle)).ServeHTTP(rec, req)
	return rec
}

func TestHandle_Selected(t *testing.T) {
	svc := &mockService{}
	svc.On("GetActive", mock.Anything, int64(5)).Return(&models.ReservationResponse{ID: 42, Status: "confirmed"}, nil)

	rec := serve(svc)

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.ID)
}

func TestHandle_NoneIsNull(t *testing.T) {
	svc := &mockService{}
	svc.On("GetActive", mock.Anything, int64(5)).Return(nil, nil)

	rec := serve(svc)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestHandle_ServiceError(t *testing.T) {
	svc := &mockService{}
	svc.On("GetActive", mock.Anything, int64(5)).Return(nil, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, serve(svc).Code)
}
