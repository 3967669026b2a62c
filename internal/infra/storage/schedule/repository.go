package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const tableSchedules = "business_schedules"

// Repository репозиторий недельного расписания бизнеса (хранится в JSONB)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает расписание бизнеса в том виде, в каком оно сохранено
func (r *Repository) Get(ctx context.Context, businessID int64) (domain.WeekSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("schedule").
		From(tableSchedules).
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var raw []byte
	err = executor.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan schedule: %v", ErrScanRow, err)
	}

	var schedule domain.WeekSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil, fmt.Errorf("%w: Get - unmarshal schedule of business %d: %v", ErrEncode, businessID, err)
	}

	return schedule, nil
}

// Upsert сохраняет расписание бизнеса, заменяя предыдущее
func (r *Repository) Upsert(ctx context.Context, businessID int64, schedule domain.WeekSchedule, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	raw, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("%w: Upsert - marshal schedule: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert(tableSchedules).
		Columns("business_id", "schedule", "updated_at").
		Values(businessID, raw, at).
		Suffix("ON CONFLICT (business_id) DO UPDATE SET schedule = EXCLUDED.schedule, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
