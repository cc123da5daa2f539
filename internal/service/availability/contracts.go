package availability

import (
	"context"

	"github.com/m04kA/TMS-BookingService/internal/domain"
)

// AvailabilityRepository интерфейс репозитория расписаний
type AvailabilityRepository interface {
	GetByTutorID(ctx context.Context, tutorID int64) (*domain.TutorAvailability, error)
	Upsert(ctx context.Context, availability *domain.TutorAvailability) (*domain.TutorAvailability, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
