package complete_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("complete_booking: booking not found")

	// ErrInvalidState возвращается, когда бронирование не находится в статусе in_progress
	ErrInvalidState = errors.New("complete_booking: booking is not in progress")

	// ErrTooEarlyToComplete возвращается, пока минимальная длительность занятия не прошла
	ErrTooEarlyToComplete = errors.New("complete_booking: too early to complete booking")

	// ErrAccessDenied возвращается, когда инициатор не связан с бронированием
	ErrAccessDenied = errors.New("complete_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("complete_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("complete_booking: internal error")
)
