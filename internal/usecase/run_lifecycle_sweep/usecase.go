package run_lifecycle_sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
)

// UseCase use case фонового прохода по незавершенным бронированиям
//
// Для каждого бронирования правила проверяются в фиксированном порядке:
// автозавершение раньше отмен, чтобы затянувшееся, но состоявшееся занятие
// закрывалось как completed, а не попадало под страховочную отмену.
// Все записи условные, поэтому гонка с ручным действием пользователя
// безопасна: проигравшая сторона получает конфликт статуса и пропускает
// бронирование. Повторный запуск ничего не меняет - терминальные статусы
// в выборку не попадают
type UseCase struct {
	bookingRepo   BookingRepository
	paymentClient PaymentServiceClient
	notifyClient  NotifyServiceClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentClient PaymentServiceClient,
	notifyClient NotifyServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		paymentClient: paymentClient,
		notifyClient:  notifyClient,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет один проход sweep
// Ошибка по отдельному бронированию логируется, проход продолжается
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()

	bookings, err := uc.bookingRepo.ListOpen(ctx)
	if err != nil {
		uc.logger.Error("LifecycleSweep: failed to list open bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to list open bookings: %v", ErrInternal, err)
	}

	resp := &Response{Scanned: len(bookings)}

	for _, booking := range bookings {
		action, err := uc.evaluate(ctx, booking, now)
		if err != nil {
			// Конфликт статуса - бронирование поменял кто-то другой, это не сбой
			if errors.Is(err, bookingRepo.ErrStatusConflict) || errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Info("LifecycleSweep: booking id=%d changed concurrently, skipped", booking.ID)
				continue
			}
			resp.Failed++
			uc.logger.Error("LifecycleSweep: failed to process booking id=%d: %v", booking.ID, err)
			continue
		}

		switch action {
		case sweepCompleted:
			resp.Completed++
		case sweepCancelled:
			resp.Cancelled++
		}
	}

	if resp.Completed > 0 || resp.Cancelled > 0 || resp.Failed > 0 {
		uc.logger.Info("LifecycleSweep: scanned=%d, completed=%d, cancelled=%d, failed=%d",
			resp.Scanned, resp.Completed, resp.Cancelled, resp.Failed)
	}

	return resp, nil
}

type sweepAction int

const (
	sweepNone sweepAction = iota
	sweepCompleted
	sweepCancelled
)

// evaluate применяет правила жизненного цикла к одному бронированию
func (uc *UseCase) evaluate(ctx context.Context, booking *domain.Booking, now time.Time) (sweepAction, error) {
	// 1. Автозавершение: занятие идет дольше порога
	if booking.Status == domain.StatusInProgress && booking.StartedAt != nil {
		autoCompleteAfter := time.Duration(domain.AutoCompletionMinutes) * time.Minute
		if now.Sub(*booking.StartedAt) >= autoCompleteAfter {
			if err := uc.bookingRepo.Complete(ctx, booking.ID, booking.Status, domain.CompletionAuto, nil); err != nil {
				return sweepNone, err
			}
			uc.logger.Info("LifecycleSweep: booking id=%d auto-completed (started at %s)", booking.ID, booking.StartedAt)
			uc.notify(ctx, booking, domain.StatusCompleted, domain.ActionComplete)
			uc.collectPayment(ctx, booking)
			return sweepCompleted, nil
		}
	}

	scheduledStart, err := booking.ScheduledStart()
	if err != nil {
		return sweepNone, fmt.Errorf("failed to resolve scheduled start: %w", err)
	}

	// 2. Отмена неподтвержденной заявки после grace-периода
	if booking.Status == domain.StatusPending && now.After(scheduledStart.Add(booking.GracePeriod())) {
		reason := fmt.Sprintf("не подтверждено в течение %d минут после начала занятия", booking.GracePeriodMinutes)
		if err := uc.bookingRepo.Cancel(ctx, booking.ID, booking.Status, reason, domain.CancelledAuto); err != nil {
			return sweepNone, err
		}
		uc.logger.Info("LifecycleSweep: booking id=%d auto-cancelled after grace period", booking.ID)
		uc.notify(ctx, booking, domain.StatusCancelled, domain.ActionCancel)
		return sweepCancelled, nil
	}

	// 3. Страховочная отмена: занятие так и не закрыто спустя долгий срок
	if booking.Status == domain.StatusConfirmed || booking.Status == domain.StatusInProgress {
		safetyAfter := time.Duration(domain.SafetyCancelMinutes) * time.Minute
		if now.After(scheduledStart.Add(safetyAfter)) {
			reason := "занятие не было завершено"
			if err := uc.bookingRepo.Cancel(ctx, booking.ID, booking.Status, reason, domain.CancelledAuto); err != nil {
				return sweepNone, err
			}
			uc.logger.Info("LifecycleSweep: booking id=%d safety-cancelled (scheduled at %s)", booking.ID, scheduledStart)
			uc.notify(ctx, booking, domain.StatusCancelled, domain.ActionCancel)
			return sweepCancelled, nil
		}
	}

	return sweepNone, nil
}

// collectPayment списывает оплату за автозавершенное занятие
// Сбой логируется и не откатывает завершение
func (uc *UseCase) collectPayment(ctx context.Context, booking *domain.Booking) {
	_, err := uc.paymentClient.CollectPayment(ctx, &paymentservice.CollectRequest{
		BookingID:     booking.ID,
		StudentID:     booking.StudentID,
		TutorID:       booking.TutorID,
		Amount:        booking.Price,
		PaymentMethod: booking.PaymentMethod,
	})
	if err != nil {
		uc.logger.Error("LifecycleSweep: payment collection failed for booking id=%d: %v", booking.ID, err)
	}
}

// notify отправляет уведомление о действии sweep, best effort
func (uc *UseCase) notify(ctx context.Context, booking *domain.Booking, status domain.BookingStatus, action domain.Action) {
	event := &notifyservice.BookingEvent{
		BookingID: booking.ID,
		TutorID:   booking.TutorID,
		StudentID: booking.StudentID,
		Status:    string(status),
		Action:    string(action),
		Actor:     string(domain.ActorSystem),
	}
	if err := uc.notifyClient.NotifyBookingEvent(ctx, event); err != nil {
		uc.logger.Warn("LifecycleSweep: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}
