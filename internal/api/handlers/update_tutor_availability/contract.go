package update_tutor_availability

import (
	"context"

	"github.com/m04kA/TMS-BookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	Upsert(ctx context.Context, tutorID int64, userID int64, req *models.UpsertAvailabilityRequest) (*models.AvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
