//go:build integration

package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/availability"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

var day = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func newReservation(businessID, clientID int64, start time.Time, minutes int) *domain.Reservation {
	return &domain.Reservation{
		BusinessID:      businessID,
		ServiceID:       1,
		ClientID:        clientID,
		StartAt:         start,
		EndAt:           start.Add(time.Duration(minutes) * time.Minute),
		Status:          domain.StatusConfirmed,
		Origin:          domain.OriginClient,
		ServiceName:     "Стрижка",
		DurationMinutes: minutes,
		Price:           1500,
		CreatedAt:       day,
		UpdatedAt:       day,
	}
}

func TestRepository_ExclusionConstraint(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, newReservation(1, 10, day.Add(10*time.Hour), 30))
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = repo.Create(ctx, newReservation(1, 11, day.Add(10*time.Hour+15*time.Minute), 30))
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = repo.Create(ctx, newReservation(1, 11, day.Add(10*time.Hour+30*time.Minute), 30))
	assert.NoError(t, err, "back to back reservations do not overlap")

	_, err = repo.Create(ctx, newReservation(2, 11, day.Add(10*time.Hour), 30))
	assert.NoError(t, err, "other business calendar is independent")

	require.NoError(t, repo.UpdateStatusIf(ctx, first.ID, domain.StatusConfirmed, domain.StatusCancelled, day))
	replacement, err := repo.Create(ctx, newReservation(1, 12, day.Add(10*time.Hour), 30))
	require.NoError(t, err, "cancelled reservation frees the interval")

	err = repo.UpdateStatusIf(ctx, first.ID, domain.StatusCancelled, domain.StatusConfirmed, day)
	assert.ErrorIs(t, err, ErrOverlap)

	got, err := repo.GetByID(ctx, replacement.ID)
	require.NoError(t, err)
	assert.Equal(t, day.Add(10*time.Hour), got.StartAt)
	assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), got.EndAt)
}

func TestRepository_UpdateStatusIf(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	r, err := repo.Create(ctx, newReservation(1, 10, day.Add(9*time.Hour), 60))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatusIf(ctx, r.ID, domain.StatusConfirmed, domain.StatusCancelled, day.Add(time.Hour)))

	err = repo.UpdateStatusIf(ctx, r.ID, domain.StatusConfirmed, domain.StatusCancelled, day.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrStatusMismatch)

	err = repo.UpdateStatusIf(ctx, 9999, domain.StatusConfirmed, domain.StatusCancelled, day)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, day.Add(time.Hour), got.UpdatedAt)
}

func TestRepository_Queries(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, newReservation(1, 10, day.Add(9*time.Hour), 30))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newReservation(1, 20, day.Add(11*time.Hour), 30))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newReservation(1, 10, day.AddDate(0, 0, 1).Add(9*time.Hour), 30))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusIf(ctx, b.ID, domain.StatusConfirmed, domain.StatusCancelled, day))

	confirmed, err := repo.GetByBusinessWithFilter(ctx, domain.ForDay(1, day))
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, a.ID, confirmed[0].ID)

	filter := domain.ForDay(1, day)
	filter.IncludeCancelled = true
	all, err := repo.GetByBusinessWithFilter(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := domain.StatusConfirmed
	mine, err := repo.GetByClientID(ctx, domain.ClientReservationsFilter{ClientID: 10, Status: &status})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].StartAt.Before(mine[1].StartAt))

	_, err = repo.Create(ctx, newReservation(2, 10, day.Add(15*time.Hour), 30))
	require.NoError(t, err)
	businessID := int64(2)
	atBusiness, err := repo.GetByClientID(ctx, domain.ClientReservationsFilter{ClientID: 10, BusinessID: &businessID, Status: &status})
	require.NoError(t, err)
	require.Len(t, atBusiness, 1)
	assert.Equal(t, int64(2), atBusiness[0].BusinessID)

	_, err = repo.GetByID(ctx, 424242)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

// Два одновременных бронирования одного слота: остаётся ровно одно
func TestRepository_ConcurrentCreateSameSlot(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := NewRepository(db)
	txManager := txmanager.NewTransactionManager(db)
	start := day.Add(14 * time.Hour)

	book := func(clientID int64) error {
		return txManager.DoSerializable(context.Background(), func(ctx context.Context) error {
			existing, err := repo.GetByBusinessWithFilter(ctx, domain.ForDay(1, day))
			if err != nil {
				return err
			}
			candidate := newReservation(1, clientID, start, 30)
			if _, conflict := availability.FindConflict(candidate.Interval(), availability.BusyIntervals(existing)); conflict {
				return ErrOverlap
			}
			_, err = repo.Create(ctx, candidate)
			return err
		})
	}

	const attempts = 2
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = book(int64(100 + i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t,
			errors.Is(err, ErrOverlap) || errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, txmanager.ErrSerializationFailure),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.GetByBusinessWithFilter(context.Background(), domain.ForDay(1, day))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
