package transition_booking

import (
	"context"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
)

// BookingRepository интерфейс репозитория бронирований
// Все записи условные: обновление проходит только из ожидаемого статуса
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	Start(ctx context.Context, id int64, from domain.BookingStatus, completionCode string) error
	Complete(ctx context.Context, id int64, from domain.BookingStatus, completionType domain.CompletionType, notes *string) error
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancellationType domain.CancellationType) error
	Dispute(ctx context.Context, id int64, from domain.BookingStatus, reason *string) error
	Restore(ctx context.Context, id int64, to domain.BookingStatus) error
}

// PaymentServiceClient интерфейс клиента для PaymentService
type PaymentServiceClient interface {
	CollectPayment(ctx context.Context, req *paymentservice.CollectRequest) (*paymentservice.CollectResponse, error)
}

// NotifyServiceClient интерфейс клиента для NotifyService
type NotifyServiceClient interface {
	NotifyBookingEvent(ctx context.Context, event *notifyservice.BookingEvent) error
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
