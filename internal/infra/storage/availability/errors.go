package availability

import "errors"

var (
	// ErrAvailabilityNotFound возвращается, когда расписание репетитора не найдено
	ErrAvailabilityNotFound = errors.New("availability.repository: tutor availability not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")

	// ErrEncodeSchedule возвращается при ошибке сериализации расписания в JSON
	ErrEncodeSchedule = errors.New("availability.repository: failed to encode schedule")

	// ErrDecodeSchedule возвращается при ошибке десериализации расписания из JSON
	ErrDecodeSchedule = errors.New("availability.repository: failed to decode schedule")
)
