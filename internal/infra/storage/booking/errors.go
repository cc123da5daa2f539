package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается, когда слот уже занят активным бронированием
	// Соответствует нарушению partial unique index bookings_active_slot_uniq
	ErrSlotTaken = errors.New("booking.repository: slot already taken")

	// ErrStatusConflict возвращается, когда условное обновление не прошло:
	// статус бронирования уже изменился с момента чтения
	ErrStatusConflict = errors.New("booking.repository: booking status changed concurrently")

	// ErrAlreadyRated возвращается при повторной попытке оценить занятие
	ErrAlreadyRated = errors.New("booking.repository: booking already rated")

	// ErrTransaction возвращается при ошибках работы с транзакцией
	ErrTransaction = errors.New("booking.repository: transaction error")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
