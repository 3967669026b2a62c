package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда бизнес ещё не задал расписание
	ErrScheduleNotFound = errors.New("schedule.repository: schedule not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")

	// ErrEncode возвращается при ошибке (де)сериализации расписания
	ErrEncode = errors.New("schedule.repository: failed to encode schedule")
)
