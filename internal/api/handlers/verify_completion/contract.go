package verify_completion

import (
	"context"

	verifyCompletion "github.com/m04kA/TMS-BookingService/internal/usecase/verify_completion"
)

type VerifyCompletionUseCase interface {
	Execute(ctx context.Context, req *verifyCompletion.Request) (*verifyCompletion.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
