package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetActiveByTutorAndDate(ctx context.Context, tutorID int64, date string) ([]*domain.Booking, error)
}

// AvailabilityRepository интерфейс репозитория расписаний репетиторов
type AvailabilityRepository interface {
	GetByTutorID(ctx context.Context, tutorID int64) (*domain.TutorAvailability, error)
}

// NotifyServiceClient интерфейс клиента для NotifyService
type NotifyServiceClient interface {
	NotifyBookingEvent(ctx context.Context, event *notifyservice.BookingEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
