package transition_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("transition_booking: booking not found")

	// ErrInvalidTransition возвращается, когда пара (статус, действие) отсутствует
	// в таблице переходов; бронирование при этом не меняется
	ErrInvalidTransition = errors.New("transition_booking: invalid transition")

	// ErrAccessDenied возвращается, когда инициатор не связан с бронированием
	ErrAccessDenied = errors.New("transition_booking: access denied")

	// ErrTooEarlyToStart возвращается при попытке начать занятие до планового времени
	ErrTooEarlyToStart = errors.New("transition_booking: too early to start the session")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("transition_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("transition_booking: internal error")
)
