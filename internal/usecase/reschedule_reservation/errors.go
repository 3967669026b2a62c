package reschedule_reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	// или не принадлежит пользователю (не клиент и не владелец бизнеса)
	ErrReservationNotFound = errors.New("reschedule_reservation: reservation not found")

	// ErrCannotReschedule возвращается, когда бронирование отменено или уже завершилось
	ErrCannotReschedule = errors.New("reschedule_reservation: reservation cannot be rescheduled")

	// ErrPartialFailure возвращается, когда исходное бронирование отменено,
	// новое не создано и восстановить исходное не удалось
	ErrPartialFailure = errors.New("reschedule_reservation: original reservation released, new one not created")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_reservation: internal error")
)
