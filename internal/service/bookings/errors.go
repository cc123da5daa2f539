package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotRate возвращается, когда бронирование нельзя оценить
	ErrCannotRate = errors.New("booking cannot be rated")

	// ErrAlreadyRated возвращается при повторной попытке оценить занятие
	ErrAlreadyRated = errors.New("booking is already rated")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
