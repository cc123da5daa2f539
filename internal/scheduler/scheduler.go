package scheduler

import (
	"context"
	"time"

	runLifecycleSweep "github.com/m04kA/TMS-BookingService/internal/usecase/run_lifecycle_sweep"
	"github.com/m04kA/TMS-BookingService/pkg/metrics"
)

// SweepUseCase интерфейс use case прохода жизненного цикла
type SweepUseCase interface {
	Execute(ctx context.Context) (*runLifecycleSweep.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler периодически запускает проход жизненного цикла бронирований
type Scheduler struct {
	sweep    SweepUseCase
	interval time.Duration
	metrics  *metrics.Metrics // может быть nil, если метрики выключены
	logger   Logger
	stopChan chan struct{}
}

// New создает новый планировщик sweep
func New(sweep SweepUseCase, interval time.Duration, m *metrics.Metrics, logger Logger) *Scheduler {
	return &Scheduler{
		sweep:    sweep,
		interval: interval,
		metrics:  m,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает периодический sweep в отдельной горутине
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
	s.logger.Info("Lifecycle sweep scheduler started (interval=%s)", s.interval)
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Первый проход сразу при старте: накопившиеся за время простоя
	// бронирования не должны ждать целый интервал
	s.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Lifecycle sweep scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Lifecycle sweep scheduler cancelled")
			return
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	start := time.Now()

	result, err := s.sweep.Execute(ctx)
	if err != nil {
		s.logger.Error("Lifecycle sweep failed: %v", err)
		if s.metrics != nil {
			s.metrics.IncSweepRun("error")
		}
		return
	}

	if s.metrics != nil {
		s.metrics.IncSweepRun("success")
		s.metrics.ObserveSweepDuration(time.Since(start).Seconds())
		for i := 0; i < result.Completed; i++ {
			s.metrics.IncSweepAction("complete")
		}
		for i := 0; i < result.Cancelled; i++ {
			s.metrics.IncSweepAction("cancel")
		}
	}
}
