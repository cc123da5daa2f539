package run_lifecycle_sweep

import (
	"net/http"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
)

// SweepResponse HTTP response model
type SweepResponse struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}

type Handler struct {
	useCase RunLifecycleSweepUseCase
	logger  Logger
}

func NewHandler(useCase RunLifecycleSweepUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/lifecycle/sweep
// Ручной запуск прохода для внешнего планировщика и эксплуатации;
// тот же проход периодически выполняет internal/scheduler
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.useCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("POST /lifecycle/sweep - Sweep failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /lifecycle/sweep - Sweep finished: scanned=%d, completed=%d, cancelled=%d, failed=%d",
		result.Scanned, result.Completed, result.Cancelled, result.Failed)
	handlers.RespondJSON(w, http.StatusOK, &SweepResponse{
		Scanned:   result.Scanned,
		Completed: result.Completed,
		Cancelled: result.Cancelled,
		Failed:    result.Failed,
	})
}
