package create_reservation

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("create_reservation: business not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_reservation: service not found")

	// ErrAccessDenied возвращается, когда ручную запись делает не владелец бизнеса
	ErrAccessDenied = errors.New("create_reservation: access denied")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_reservation: invalid reservation date")

	// ErrBusinessClosed возвращается, когда бизнес закрыт в указанную дату
	ErrBusinessClosed = errors.New("create_reservation: business is closed on this date")

	// ErrInvalidTimeSlot возвращается, когда время начала не входит в сетку слотов дня
	ErrInvalidTimeSlot = errors.New("create_reservation: invalid time slot")

	// ErrTooLateToBook возвращается, когда слот уже начался или прошёл
	ErrTooLateToBook = errors.New("create_reservation: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда интервал пересекается с подтверждённым бронированием
	ErrSlotNotAvailable = errors.New("create_reservation: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
