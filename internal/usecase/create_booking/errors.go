package create_booking

import "errors"

var (
	// ErrSlotNotAvailable возвращается, когда выбранный слот занят или не предлагается расписанием
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrTutorNotBookable возвращается, когда у репетитора нет опубликованного расписания
	ErrTutorNotBookable = errors.New("create_booking: tutor has no published schedule")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrTooLateToBook возвращается, когда до начала слота осталось меньше минимального запаса
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
