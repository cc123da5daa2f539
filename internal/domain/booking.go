package domain

import (
	"time"

	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusDisputed   BookingStatus = "disputed"
)

// CompletionType способ завершения занятия
type CompletionType string

const (
	CompletionManual CompletionType = "manual" // подтверждено кодом студента или репетитором
	CompletionAuto   CompletionType = "auto"   // автозавершение по таймауту
)

// CancellationType инициатор отмены бронирования
type CancellationType string

const (
	CancelledByStudent CancellationType = "student"
	CancelledByTutor   CancellationType = "tutor"
	CancelledAuto      CancellationType = "auto" // lifecycle sweep
)

// Booking represents a tutoring session booking in the system
type Booking struct {
	ID          int64
	TutorID     int64
	StudentID   int64
	BookingDate time.Time
	StartTime   types.TimeString
	Status      BookingStatus

	Price         float64
	PaymentMethod string

	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	RestoredAt  *time.Time

	CompletionType     *CompletionType
	CompletionNotes    *string
	CompletionCode     *string // 6-значный код, выдаётся при старте занятия
	CompletionAttempts int

	CancellationReason *string
	CancellationType   *CancellationType

	GracePeriodMinutes int

	StudentRating *int
	HasRated      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if the booking reached a terminal status
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted ||
		b.Status == StatusCancelled ||
		b.Status == StatusDisputed
}

// IsActive returns true if the booking occupies its slot
// Активное бронирование блокирует слот (tutor_id, booking_date, start_time)
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending ||
		b.Status == StatusConfirmed ||
		b.Status == StatusInProgress
}

// ScheduledStart returns the scheduled start of the session on its date
func (b *Booking) ScheduledStart() (time.Time, error) {
	return b.StartTime.OnDate(b.BookingDate)
}

// GracePeriod returns the grace period as a duration
func (b *Booking) GracePeriod() time.Duration {
	return time.Duration(b.GracePeriodMinutes) * time.Minute
}

// CanBeRated returns true if the student may leave a rating
func (b *Booking) CanBeRated() bool {
	return b.Status == StatusCompleted && !b.HasRated
}

// TutorBookingsFilter фильтр для получения бронирований репетитора
type TutorBookingsFilter struct {
	TutorID         int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли терминальные бронирования
}
