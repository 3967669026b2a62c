package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ReservationService/internal/service/schedules/models"
	"github.com/m04kA/SMC-ReservationService/pkg/clock"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type mockScheduleRepo struct{ mock.Mock }

func (m *mockScheduleRepo) Get(ctx context.Context, businessID int64) (domain.WeekSchedule, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.WeekSchedule), args.Error(1)
}

func (m *mockScheduleRepo) Upsert(ctx context.Context, businessID int64, schedule domain.WeekSchedule, at time.Time) error {
	return m.Called(ctx, businessID, schedule, at).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

var now = time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)

const ownerID = int64(100)

func newService() (*Service, *mockScheduleRepo, *mockCatalog) {
	repo := &mockScheduleRepo{}
	catalog := &mockCatalog{}
	catalog.On("GetBusiness", mock.Anything, int64(1)).
		Return(&domain.Business{ID: 1, OwnerIDs: []int64{ownerID}}, nil).Maybe()
	return NewService(repo, catalog, clock.NewMock(now), logger.NewNop()), repo, catalog
}

func TestGet_NormalizesStoredSchedule(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("Get", mock.Anything, int64(1)).Return(domain.WeekSchedule{
		domain.Monday: {Open: true, Intervals: []domain.TimeRange{{Start: "09:00", End: "14:00"}}},
	}, nil)

	resp, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, resp.Days, 7)
	assert.Equal(t, "monday", resp.Days[0].Weekday)
	assert.True(t, resp.Days[0].Open)
	assert.Equal(t, "sunday", resp.Days[6].Weekday)
	assert.False(t, resp.Days[6].Open)
	assert.NotNil(t, resp.Days[6].Intervals)
}

func TestGet_MissingScheduleIsClosedWeek(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("Get", mock.Anything, int64(1)).Return(nil, scheduleRepo.ErrScheduleNotFound)

	resp, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	for _, day := range resp.Days {
		assert.False(t, day.Open, day.Weekday)
	}
}

func TestGet_RepositoryError(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("Get", mock.Anything, int64(1)).Return(nil, errors.New("connection refused"))

	_, err := svc.Get(context.Background(), 1)

	assert.ErrorIs(t, err, ErrInternal)
}

func TestReplace_StoresNormalizedSchedule(t *testing.T) {
	svc, repo, _ := newService()
	input := domain.WeekSchedule{
		domain.Saturday: {Open: true, Intervals: []domain.TimeRange{{Start: "10:00", End: "13:00"}, {Start: "15:00", End: "18:00"}}},
		domain.Sunday:   {Open: true},
	}
	expected, err := domain.NormalizeWeekSchedule(input)
	require.NoError(t, err)
	repo.On("Upsert", mock.Anything, int64(1), expected, now).Return(nil)

	resp, err := svc.Replace(context.Background(), &models.ReplaceScheduleRequest{UserID: ownerID, BusinessID: 1, Schedule: input})
	require.NoError(t, err)

	assert.True(t, resp.Days[5].Open)
	assert.Len(t, resp.Days[5].Intervals, 2)
	assert.False(t, resp.Days[6].Open, "open day without intervals is closed")
	repo.AssertExpectations(t)
}

func TestReplace_Errors(t *testing.T) {
	tooMany := make([]domain.TimeRange, 0, domain.MaxIntervalsPerDay+1)
	for i := 0; i <= domain.MaxIntervalsPerDay; i++ {
		tooMany = append(tooMany, domain.TimeRange{Start: "09:00", End: "10:00"})
	}

	tests := []struct {
		name    string
		req     *models.ReplaceScheduleRequest
		wantErr error
	}{
		{
			name: "end before start",
			req: &models.ReplaceScheduleRequest{UserID: ownerID, BusinessID: 1, Schedule: domain.WeekSchedule{
				domain.Monday: {Open: true, Intervals: []domain.TimeRange{{Start: "18:00", End: "09:00"}}},
			}},
			wantErr: ErrInvalidInput,
		},
		{
			name: "unknown weekday",
			req: &models.ReplaceScheduleRequest{UserID: ownerID, BusinessID: 1, Schedule: domain.WeekSchedule{
				"holiday": {Open: true, Intervals: []domain.TimeRange{{Start: "09:00", End: "10:00"}}},
			}},
			wantErr: ErrInvalidInput,
		},
		{
			name: "too many intervals",
			req: &models.ReplaceScheduleRequest{UserID: ownerID, BusinessID: 1, Schedule: domain.WeekSchedule{
				domain.Monday: {Open: true, Intervals: tooMany},
			}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "not an owner",
			req:     &models.ReplaceScheduleRequest{UserID: 5, BusinessID: 1, Schedule: domain.WeekSchedule{}},
			wantErr: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService()

			_, err := svc.Replace(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
