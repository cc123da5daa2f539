package domain

// Slot generation constants
const (
	// SlotStepMinutes фиксированный шаг и длительность слота
	SlotStepMinutes = 60

	// SameDayNoticeMinutes минимальный запас до начала слота при бронировании на сегодня
	SameDayNoticeMinutes = 15
)

// Lifecycle policy constants
const (
	// DefaultGracePeriodMinutes период ожидания подтверждения после начала занятия
	DefaultGracePeriodMinutes = 15

	// ManualCompletionMinMinutes минимальная длительность занятия для ручного завершения репетитором
	ManualCompletionMinMinutes = 60

	// AutoCompletionMinutes длительность занятия, после которой sweep завершает его автоматически
	AutoCompletionMinutes = 120

	// SafetyCancelMinutes жесткая граница: подтвержденные и идущие занятия,
	// не завершившиеся через 3 часа после планового начала, отменяются sweep
	SafetyCancelMinutes = 180
)

// Completion code constants
const (
	CompletionCodeLength = 6
)

// Business validation constants
const (
	MinStudentRating           = 1
	MaxStudentRating           = 5
	MaxCompletionNotesLength   = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses список статусов, при которых бронирование занимает слот
// Используется для фильтрации при подсчёте доступных слотов и в partial unique index
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// TerminalStatuses список терминальных статусов
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusDisputed,
}
