package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/pgerr"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const tableReservations = "reservations"

var reservationColumns = []string{
	"id",
	"business_id",
	"service_id",
	"client_id",
	"start_at",
	"end_at",
	"status",
	"origin",
	"client_name",
	"business_name",
	"service_name",
	"duration_minutes",
	"price",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Пересечение с подтверждённым бронированием того же бизнеса отклоняется
// ограничением в БД и возвращается как ErrOverlap.
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"business_id",
			"service_id",
			"client_id",
			"start_at",
			"end_at",
			"status",
			"origin",
			"client_name",
			"business_name",
			"service_name",
			"duration_minutes",
			"price",
			"created_at",
			"updated_at",
		).
		Values(
			reservation.BusinessID,
			reservation.ServiceID,
			reservation.ClientID,
			reservation.StartAt,
			reservation.EndAt,
			reservation.Status,
			reservation.Origin,
			reservation.ClientName,
			reservation.BusinessName,
			reservation.ServiceName,
			reservation.DurationMinutes,
			reservation.Price,
			reservation.CreatedAt,
			reservation.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&reservation.ID)
	if err != nil {
		return nil, classify("Create - execute insert", err)
	}

	return reservation, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронирование по ID и блокирует строку до конца транзакции.
// Вне транзакции работает как GetByID
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, lock bool) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"id": id})
	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return reservation, nil
}

// GetByClientID получает бронирования клиента, отсортированные по началу.
// Опционально фильтрует по бизнесу и хранимому статусу
func (r *Repository) GetByClientID(ctx context.Context, filter domain.ClientReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"client_id": filter.ClientID}).
		OrderBy("start_at ASC", "id ASC")

	if filter.BusinessID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"business_id": *filter.BusinessID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetByBusinessWithFilter получает бронирования бизнеса, пересекающиеся с периодом фильтра.
// Без явного статуса и IncludeCancelled возвращаются только подтверждённые.
//
// Внутри транзакции для фильтра ровно на одни сутки строки блокируются (FOR UPDATE):
// так создание бронирования перепроверяет день под блокировкой
func (r *Repository) GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From(tableReservations).
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_at": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeCancelled {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": domain.StatusConfirmed})
	}

	selectBuilder = selectBuilder.OrderBy("start_at ASC", "id ASC")

	if dbmetrics.IsInTransaction(ctx) && filter.IsSingleDay() {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("GetByBusinessWithFilter - execute query", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateStatusIf меняет статус с from на to, только если текущий статус равен from.
// Возвращает ErrReservationNotFound, если бронирования нет, и ErrStatusMismatch,
// если статус уже другой. Возврат в confirmed может нарушить ограничение
// на пересечения, тогда возвращается ErrOverlap
func (r *Repository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.ReservationStatus, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("status", to).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusIf - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return classify("UpdateStatusIf - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatusIf - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: UpdateStatusIf - reservation %d is not %s", ErrStatusMismatch, id, from)
	}

	return nil
}

// classify переводит ошибки Postgres в ошибки репозитория
func classify(op string, err error) error {
	switch {
	case pgerr.IsExclusionViolation(err):
		return fmt.Errorf("%w: %s: %v", ErrOverlap, op, err)
	case pgerr.IsSerializationFailure(err):
		return fmt.Errorf("%w: %s: %v", ErrConcurrentUpdate, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrExecQuery, op, err)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&reservation.ID,
		&reservation.BusinessID,
		&reservation.ServiceID,
		&reservation.ClientID,
		&reservation.StartAt,
		&reservation.EndAt,
		&reservation.Status,
		&reservation.Origin,
		&reservation.ClientName,
		&reservation.BusinessName,
		&reservation.ServiceName,
		&reservation.DurationMinutes,
		&reservation.Price,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// timestamp without time zone lib/pq отдаёт в UTC, но показания часов сохраняем явно
	reservation.StartAt = domain.WallClock(reservation.StartAt)
	reservation.EndAt = domain.WallClock(reservation.EndAt)
	reservation.CreatedAt = domain.WallClock(createdAt.Time)
	reservation.UpdatedAt = domain.WallClock(updatedAt.Time)

	return &reservation, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}
