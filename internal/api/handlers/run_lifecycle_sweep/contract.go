package run_lifecycle_sweep

import (
	"context"

	runLifecycleSweep "github.com/m04kA/TMS-BookingService/internal/usecase/run_lifecycle_sweep"
)

type RunLifecycleSweepUseCase interface {
	Execute(ctx context.Context) (*runLifecycleSweep.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
