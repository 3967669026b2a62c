package create_reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	scheduleRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/schedule"
	catalogClient "github.com/m04kA/SMC-ReservationService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-ReservationService/pkg/clock"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Reservation) *domain.Reservation); ok {
		return fn(ctx, r), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessReservationsFilter) ([]*domain.Reservation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

type mockScheduleRepo struct{ mock.Mock }

func (m *mockScheduleRepo) Get(ctx context.Context, businessID int64) (domain.WeekSchedule, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.WeekSchedule), args.Error(1)
}

type mockOutbox struct{ mock.Mock }

func (m *mockOutbox) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *mockCatalog) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	args := m.Called(ctx, businessID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type stubUsers struct {
	name string
	err  error
}

func (s stubUsers) GetClientName(context.Context, int64) (string, error) {
	return s.name, s.err
}

// inlineTx выполняет функцию без БД; commitErr имитирует ошибку фиксации
type inlineTx struct {
	commitErr error
}

func (tx inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return tx.commitErr
}

type recordedMetrics struct {
	results []string
}

func (m *recordedMetrics) RecordReservationOperation(_ string, result string) {
	m.results = append(m.results, result)
}

// 2025-10-13 понедельник
var monday = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

var morningShift = domain.WeekSchedule{
	domain.Monday: {Open: true, Intervals: []domain.TimeRange{{Start: "09:00", End: "14:00"}}},
}

const (
	ownerID  = int64(100)
	clientID = int64(5)
)

type fixture struct {
	reservations *mockReservationRepo
	schedules    *mockScheduleRepo
	outbox       *mockOutbox
	catalog      *mockCatalog
	metrics      *recordedMetrics
	tx           *inlineTx
	uc           *UseCase
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		reservations: &mockReservationRepo{},
		schedules:    &mockScheduleRepo{},
		outbox:       &mockOutbox{},
		catalog:      &mockCatalog{},
		metrics:      &recordedMetrics{},
		tx:           &inlineTx{},
	}
	f.uc = NewUseCase(f.reservations, f.schedules, f.outbox, f.catalog, stubUsers{name: "Иван Петров"},
		f.tx, f.metrics, clock.NewMock(now), logger.NewNop())
	return f
}

func (f *fixture) withCatalog(duration int) {
	f.catalog.On("GetBusiness", mock.Anything, int64(1)).
		Return(&domain.Business{ID: 1, Name: "Барбершоп", OwnerIDs: []int64{ownerID}}, nil)
	f.catalog.On("GetService", mock.Anything, int64(1), int64(2)).
		Return(&domain.Service{ID: 2, BusinessID: 1, Name: "Стрижка", DurationMinutes: duration, Price: 1500}, nil)
}

func at(date time.Time, hhmm string) time.Time {
	t, err := types.TimeString(hhmm).OnDate(date)
	if err != nil {
		panic(err)
	}
	return t
}

func clientRequest(start string) *Request {
	return &Request{
		ActorID:    clientID,
		ClientID:   clientID,
		BusinessID: 1,
		ServiceID:  2,
		Date:       monday,
		StartTime:  types.TimeString(start),
		Origin:     domain.OriginClient,
	}
}

func createdEcho() func(context.Context, *domain.Reservation) *domain.Reservation {
	return func(_ context.Context, r *domain.Reservation) *domain.Reservation {
		out := *r
		out.ID = 42
		return &out
	}
}

func TestExecute_ClientBooksFreeSlot(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(30)
	f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, domain.ForDay(1, monday)).Return([]*domain.Reservation{}, nil)
	f.reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(createdEcho(), nil)
	f.outbox.On("Insert", mock.Anything, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
		return e.EventType == domain.EventReservationCreated && e.AggregateID == "42"
	})).Return(nil)

	resp, err := f.uc.Execute(context.Background(), clientRequest("10:00"))
	require.NoError(t, err)

	r := resp.Reservation
	assert.Equal(t, int64(42), r.ID)
	assert.Equal(t, at(monday, "10:00"), r.StartAt)
	assert.Equal(t, at(monday, "10:30"), r.EndAt)
	assert.Equal(t, domain.StatusConfirmed, r.Status)
	assert.Equal(t, domain.OriginClient, r.Origin)
	assert.Equal(t, "Иван Петров", r.ClientName)
	assert.Equal(t, "Барбершоп", r.BusinessName)
	assert.Equal(t, "Стрижка", r.ServiceName)
	assert.Equal(t, 1500.0, r.Price)
	assert.Equal(t, []string{metrics.ResultSuccess}, f.metrics.results)
	f.outbox.AssertExpectations(t)
}

func TestExecute_OverlapWithExistingReservation(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(60)
	f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, domain.ForDay(1, monday)).Return([]*domain.Reservation{
		{ID: 7, BusinessID: 1, StartAt: at(monday, "10:30"), EndAt: at(monday, "11:00"), Status: domain.StatusConfirmed},
	}, nil)

	_, err := f.uc.Execute(context.Background(), clientRequest("10:00"))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, []string{metrics.ResultConflict}, f.metrics.results)
	f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_CancelledReservationDoesNotBlock(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(30)
	f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, domain.ForDay(1, monday)).Return([]*domain.Reservation{
		{ID: 7, BusinessID: 1, StartAt: at(monday, "10:00"), EndAt: at(monday, "10:30"), Status: domain.StatusCancelled},
	}, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(createdEcho(), nil)
	f.outbox.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), clientRequest("10:00"))
	require.NoError(t, err)
}

func TestExecute_ConcurrentBookingLosesOnConstraint(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(30)
	f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, domain.ForDay(1, monday)).Return([]*domain.Reservation{}, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.New("insert: "+reservationRepo.ErrOverlap.Error())).Once()

	// Ошибка без обёртки ErrOverlap считается внутренней
	_, err := f.uc.Execute(context.Background(), clientRequest("10:00"))
	assert.ErrorIs(t, err, ErrInternal)

	f.reservations.On("Create", mock.Anything, mock.Anything).
		Return(nil, reservationRepo.ErrOverlap).Once()

	_, err = f.uc.Execute(context.Background(), clientRequest("10:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	f.outbox.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestExecute_SerializationFailureOnCommit(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.tx.commitErr = txmanager.ErrSerializationFailure
	f.withCatalog(30)
	f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, mock.Anything).Return([]*domain.Reservation{}, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(createdEcho(), nil)
	f.outbox.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), clientRequest("10:00"))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_ClientSlotRules(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		start    string
		schedule domain.WeekSchedule
		wantErr  error
	}{
		{name: "not on the slot grid", now: monday.AddDate(0, 0, -1), start: "10:15", schedule: morningShift, wantErr: ErrInvalidTimeSlot},
		{name: "slot does not fit before closing", now: monday.AddDate(0, 0, -1), start: "14:00", schedule: morningShift, wantErr: ErrInvalidTimeSlot},
		{name: "closed day", now: monday.AddDate(0, 0, -1), start: "10:00", schedule: domain.WeekSchedule{}, wantErr: ErrBusinessClosed},
		{name: "slot already started", now: at(monday, "10:05"), start: "10:00", schedule: morningShift, wantErr: ErrTooLateToBook},
		{name: "slot before rounded now", now: at(monday, "09:45"), start: "09:30", schedule: morningShift, wantErr: ErrTooLateToBook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.now)
			f.withCatalog(30)
			f.schedules.On("Get", mock.Anything, int64(1)).Return(tt.schedule, nil)

			_, err := f.uc.Execute(context.Background(), clientRequest(tt.start))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{metrics.ResultRejected}, f.metrics.results)
			f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_MissingScheduleMeansClosed(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(30)
	f.schedules.On("Get", mock.Anything, int64(1)).Return(nil, scheduleRepo.ErrScheduleNotFound)

	_, err := f.uc.Execute(context.Background(), clientRequest("10:00"))

	assert.ErrorIs(t, err, ErrBusinessClosed)
}

func TestExecute_OwnerManualEntryOutsideGrid(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(30)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, domain.ForDay(1, monday)).Return([]*domain.Reservation{}, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(createdEcho(), nil)
	f.outbox.On("Insert", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActorID:    ownerID,
		ClientID:   clientID,
		BusinessID: 1,
		ServiceID:  2,
		Date:       monday,
		StartTime:  "19:10",
		Origin:     domain.OriginBusiness,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OriginBusiness, resp.Reservation.Origin)
	assert.Equal(t, at(monday, "19:40"), resp.Reservation.EndAt)
	f.schedules.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestExecute_ManualEntryRules(t *testing.T) {
	t.Run("not an owner", func(t *testing.T) {
		f := newFixture(monday.AddDate(0, 0, -1))
		f.withCatalog(30)

		_, err := f.uc.Execute(context.Background(), &Request{
			ActorID: 77, ClientID: clientID, BusinessID: 1, ServiceID: 2,
			Date: monday, StartTime: "10:00", Origin: domain.OriginBusiness,
		})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("start in the past", func(t *testing.T) {
		f := newFixture(at(monday, "12:00"))
		f.withCatalog(30)

		_, err := f.uc.Execute(context.Background(), &Request{
			ActorID: ownerID, ClientID: clientID, BusinessID: 1, ServiceID: 2,
			Date: monday, StartTime: "11:00", Origin: domain.OriginBusiness,
		})

		assert.ErrorIs(t, err, ErrTooLateToBook)
	})
}

func TestExecute_ClientNameUnavailable(t *testing.T) {
	f := newFixture(monday.AddDate(0, 0, -1))
	f.withCatalog(30)
	f.uc.userClient = stubUsers{err: errors.New("user service degraded")}
	f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
	f.reservations.On("GetByBusinessWithFilter", mock.Anything, mock.Anything).Return([]*domain.Reservation{}, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(createdEcho(), nil)
	f.outbox.On("Insert", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.uc.Execute(context.Background(), clientRequest("10:00"))
	require.NoError(t, err)

	assert.Empty(t, resp.Reservation.ClientName)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		setup   func(f *fixture)
		wantErr error
	}{
		{
			name:    "invalid business id",
			req:     &Request{ActorID: clientID, ClientID: clientID, ServiceID: 2, Date: monday, StartTime: "10:00", Origin: domain.OriginClient},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "malformed start time",
			req:     &Request{ActorID: clientID, ClientID: clientID, BusinessID: 1, ServiceID: 2, Date: monday, StartTime: "25:00", Origin: domain.OriginClient},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown origin",
			req:     &Request{ActorID: clientID, ClientID: clientID, BusinessID: 1, ServiceID: 2, Date: monday, StartTime: "10:00", Origin: "partner"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "client books for someone else",
			req:     &Request{ActorID: clientID, ClientID: 6, BusinessID: 1, ServiceID: 2, Date: monday, StartTime: "10:00", Origin: domain.OriginClient},
			wantErr: ErrInvalidInput,
		},
		{
			name: "business not found",
			req:  clientRequest("10:00"),
			setup: func(f *fixture) {
				f.catalog.On("GetBusiness", mock.Anything, int64(1)).Return(nil, catalogClient.ErrBusinessNotFound)
			},
			wantErr: ErrBusinessNotFound,
		},
		{
			name: "service not found",
			req:  clientRequest("10:00"),
			setup: func(f *fixture) {
				f.catalog.On("GetBusiness", mock.Anything, int64(1)).Return(&domain.Business{ID: 1}, nil)
				f.catalog.On("GetService", mock.Anything, int64(1), int64(2)).Return(nil, catalogClient.ErrServiceNotFound)
			},
			wantErr: ErrServiceNotFound,
		},
		{
			name: "catalog unavailable",
			req:  clientRequest("10:00"),
			setup: func(f *fixture) {
				f.catalog.On("GetBusiness", mock.Anything, int64(1)).Return(nil, catalogClient.ErrInternal)
			},
			wantErr: ErrInternal,
		},
		{
			name: "date in the past",
			req: func() *Request {
				r := clientRequest("10:00")
				r.Date = monday.AddDate(0, 0, -2)
				return r
			}(),
			setup:   func(f *fixture) { f.withCatalog(30) },
			wantErr: ErrInvalidDate,
		},
		{
			name: "reservations query failure",
			req:  clientRequest("10:00"),
			setup: func(f *fixture) {
				f.withCatalog(30)
				f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
				f.reservations.On("GetByBusinessWithFilter", mock.Anything, mock.Anything).Return(nil, reservationRepo.ErrExecQuery)
			},
			wantErr: ErrInternal,
		},
		{
			name: "outbox failure",
			req:  clientRequest("10:00"),
			setup: func(f *fixture) {
				f.withCatalog(30)
				f.schedules.On("Get", mock.Anything, int64(1)).Return(morningShift, nil)
				f.reservations.On("GetByBusinessWithFilter", mock.Anything, mock.Anything).Return([]*domain.Reservation{}, nil)
				f.reservations.On("Create", mock.Anything, mock.Anything).Return(createdEcho(), nil)
				f.outbox.On("Insert", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			wantErr: ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(monday.AddDate(0, 0, -1))
			if tt.setup != nil {
				tt.setup(f)
			}

			resp, err := f.uc.Execute(context.Background(), tt.req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
