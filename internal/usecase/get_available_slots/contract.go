package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetActiveByTutorAndDate получает активные бронирования репетитора на дату
	GetActiveByTutorAndDate(ctx context.Context, tutorID int64, date string) ([]*domain.Booking, error)
}

// AvailabilityRepository интерфейс репозитория расписаний репетиторов
type AvailabilityRepository interface {
	GetByTutorID(ctx context.Context, tutorID int64) (*domain.TutorAvailability, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
