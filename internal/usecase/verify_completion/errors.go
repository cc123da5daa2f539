package verify_completion

import "errors"

var (
	// ErrBookingNotFound бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidCode код завершения не совпал
	ErrInvalidCode = errors.New("invalid completion code")

	// ErrInvalidState бронирование не находится в статусе in_progress
	ErrInvalidState = errors.New("booking is not in progress")

	// ErrAccessDenied инициатор не связан с бронированием
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput невалидные входные данные
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)
