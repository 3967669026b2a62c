package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrOverlap возвращается, когда подтверждённое бронирование пересекается с уже существующим
	// (нарушение exclusion constraint, SQLSTATE 23P01)
	ErrOverlap = errors.New("reservation.repository: reservation overlaps an existing one")

	// ErrConcurrentUpdate возвращается, когда БД отменила запрос из-за конкурентной транзакции
	ErrConcurrentUpdate = errors.New("reservation.repository: concurrent update")

	// ErrStatusMismatch возвращается, когда текущий статус бронирования отличается от ожидаемого
	ErrStatusMismatch = errors.New("reservation.repository: unexpected reservation status")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
