package bookings

import (
	"context"

	"github.com/m04kA/TMS-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByStudentID(ctx context.Context, studentID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByTutorWithFilter(ctx context.Context, filter domain.TutorBookingsFilter) ([]*domain.Booking, error)
	SetRating(ctx context.Context, id int64, rating int) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
