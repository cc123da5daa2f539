package run_lifecycle_sweep

import (
	"context"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListOpen(ctx context.Context) ([]*domain.Booking, error)
	Complete(ctx context.Context, id int64, from domain.BookingStatus, completionType domain.CompletionType, notes *string) error
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancellationType domain.CancellationType) error
}

// PaymentServiceClient интерфейс клиента PaymentService
type PaymentServiceClient interface {
	CollectPayment(ctx context.Context, req *paymentservice.CollectRequest) (*paymentservice.CollectResponse, error)
}

// NotifyServiceClient интерфейс клиента NotifyService
type NotifyServiceClient interface {
	NotifyBookingEvent(ctx context.Context, event *notifyservice.BookingEvent) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
