package transition_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
)

// UseCase use case переходов жизненного цикла бронирования
//
// Единственная точка, через которую меняется статус: ручные действия,
// верификация кода и sweep сходятся к одной таблице переходов. Гонки
// (например, sweep отменяет, а репетитор одновременно подтверждает)
// разрешаются условными обновлениями в репозитории - проигравший переход
// получает ErrInvalidTransition и ничего не меняет
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

// Execute выполняет переход бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("TransitionBooking: booking=%d, action=%s, actor=%s(%d)",
		req.BookingID, req.Action, req.Actor, req.ActorID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("TransitionBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Инициатор должен иметь право на действие
	if !domain.ActorAllowed(req.Action, req.Actor) {
		uc.logger.Warn("TransitionBooking: actor=%s is not allowed to perform action=%s", req.Actor, req.Action)
		return nil, ErrInvalidTransition
	}

	// 3. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("TransitionBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("TransitionBooking: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	// 4. Проверяем принадлежность бронирования инициатору
	if err := uc.checkActorAccess(booking, req); err != nil {
		return nil, err
	}

	// 5. Restore - административный хук вне основной таблицы переходов
	if req.Action == domain.ActionRestore {
		return uc.restore(ctx, booking, req)
	}

	// 6. Ищем переход в таблице; мимо таблицы - отказ без изменения бронирования
	transition, ok := domain.TransitionFor(booking.Status, req.Action)
	if !ok {
		uc.logger.Warn("TransitionBooking: no transition from status=%s via action=%s for booking id=%d",
			booking.Status, req.Action, req.BookingID)
		return nil, ErrInvalidTransition
	}

	// 7. Применяем переход
	if err := uc.apply(ctx, booking, transition, req); err != nil {
		return nil, err
	}

	// 8. Перечитываем бронирование после перехода
	updated, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		uc.logger.Error("TransitionBooking: failed to reread booking id=%d: %v", req.BookingID, err)
		// Переход уже записан: побочные эффекты выполняем по известному
		// целевому статусу, иначе оплата завершенного занятия потеряется
		applied := *booking
		applied.Status = transition.To
		uc.sideEffects(ctx, &applied, req)
		return nil, fmt.Errorf("%w: failed to reread booking: %v", ErrInternal, err)
	}

	// 9. Побочные эффекты: оплата при завершении, уведомление - всегда
	uc.sideEffects(ctx, updated, req)

	uc.logger.Info("TransitionBooking: booking id=%d %s -> %s", req.BookingID, transition.From, updated.Status)
	return &Response{Booking: updated}, nil
}

// apply выполняет запись перехода в хранилище
func (uc *UseCase) apply(ctx context.Context, booking *domain.Booking, transition domain.Transition, req *Request) error {
	var err error

	switch req.Action {
	case domain.ActionConfirm:
		err = uc.bookingRepo.UpdateStatus(ctx, booking.ID, transition.From, transition.To)

	case domain.ActionStart:
		// Начать занятие можно не раньше планового времени
		scheduledStart, startErr := booking.ScheduledStart()
		if startErr != nil {
			return fmt.Errorf("%w: failed to resolve scheduled start: %v", ErrInternal, startErr)
		}
		if uc.timeProvider.Now().Before(scheduledStart) {
			uc.logger.Warn("TransitionBooking: too early to start booking id=%d (scheduled at %s)",
				booking.ID, scheduledStart)
			return ErrTooEarlyToStart
		}

		code, codeErr := generateCompletionCode()
		if codeErr != nil {
			return codeErr
		}
		err = uc.bookingRepo.Start(ctx, booking.ID, transition.From, code)

	case domain.ActionComplete:
		err = uc.bookingRepo.Complete(ctx, booking.ID, transition.From, domain.CompletionAuto, req.Reason)

	case domain.ActionCancel:
		reason := ""
		if req.Reason != nil {
			reason = *req.Reason
		}
		err = uc.bookingRepo.Cancel(ctx, booking.ID, transition.From, reason, cancellationTypeFor(req.Actor))

	case domain.ActionDispute:
		err = uc.bookingRepo.Dispute(ctx, booking.ID, transition.From, req.Reason)

	default:
		return ErrInvalidTransition
	}

	if err != nil {
		// Статус успел измениться - этот переход проиграл гонку
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			uc.logger.Warn("TransitionBooking: concurrent status change for booking id=%d, action=%s rejected",
				booking.ID, req.Action)
			return ErrInvalidTransition
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		uc.logger.Error("TransitionBooking: failed to apply action=%s for booking id=%d: %v", req.Action, booking.ID, err)
		return fmt.Errorf("%w: failed to apply transition: %v", ErrInternal, err)
	}

	return nil
}

// restore восстанавливает отмененное бронирование в указанный дотерминальный статус
func (uc *UseCase) restore(ctx context.Context, booking *domain.Booking, req *Request) (*Response, error) {
	if booking.Status != domain.StatusCancelled {
		uc.logger.Warn("TransitionBooking: restore requested for booking id=%d in status=%s", booking.ID, booking.Status)
		return nil, ErrInvalidTransition
	}

	if req.RestoreTo == nil {
		return nil, fmt.Errorf("%w: restoreTo status is required", ErrInvalidInput)
	}

	to := *req.RestoreTo
	if to != domain.StatusPending && to != domain.StatusConfirmed && to != domain.StatusInProgress {
		return nil, fmt.Errorf("%w: restoreTo must be a non-terminal status", ErrInvalidInput)
	}

	if err := uc.bookingRepo.Restore(ctx, booking.ID, to); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("TransitionBooking: failed to restore booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to restore booking: %v", ErrInternal, err)
	}

	updated, err := uc.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		// Восстановление уже записано, уведомление не теряем
		applied := *booking
		applied.Status = to
		uc.sideEffects(ctx, &applied, req)
		return nil, fmt.Errorf("%w: failed to reread booking: %v", ErrInternal, err)
	}

	uc.sideEffects(ctx, updated, req)

	uc.logger.Info("TransitionBooking: booking id=%d restored to %s", booking.ID, updated.Status)
	return &Response{Booking: updated}, nil
}

// sideEffects выполняет внешние вызовы после успешного перехода
// Оплата списывается ровно один раз на вход в completed; её сбой логируется
// и не откатывает завершение. Уведомления - best effort
func (uc *UseCase) sideEffects(ctx context.Context, booking *domain.Booking, req *Request) {
	if booking.Status == domain.StatusCompleted {
		_, err := uc.paymentClient.CollectPayment(ctx, &paymentservice.CollectRequest{
			BookingID:     booking.ID,
			StudentID:     booking.StudentID,
			TutorID:       booking.TutorID,
			Amount:        booking.Price,
			PaymentMethod: booking.PaymentMethod,
		})
		if err != nil {
			uc.logger.Error("TransitionBooking: payment collection failed for booking id=%d: %v", booking.ID, err)
		}
	}

	event := &notifyservice.BookingEvent{
		BookingID: booking.ID,
		TutorID:   booking.TutorID,
		StudentID: booking.StudentID,
		Status:    string(booking.Status),
		Action:    string(req.Action),
		Actor:     string(req.Actor),
	}
	if err := uc.notifyClient.NotifyBookingEvent(ctx, event); err != nil {
		uc.logger.Warn("TransitionBooking: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}

// checkActorAccess проверяет, что инициатор связан с бронированием
// system и admin действуют без проверки принадлежности
func (uc *UseCase) checkActorAccess(booking *domain.Booking, req *Request) error {
	switch req.Actor {
	case domain.ActorStudent:
		if booking.StudentID != req.ActorID {
			uc.logger.Warn("TransitionBooking: student=%d has no access to booking id=%d", req.ActorID, booking.ID)
			return ErrAccessDenied
		}
	case domain.ActorTutor:
		if booking.TutorID != req.ActorID {
			uc.logger.Warn("TransitionBooking: tutor=%d has no access to booking id=%d", req.ActorID, booking.ID)
			return ErrAccessDenied
		}
	}
	return nil
}

// cancellationTypeFor определяет тип отмены по роли инициатора
func cancellationTypeFor(actor domain.Actor) domain.CancellationType {
	switch actor {
	case domain.ActorStudent:
		return domain.CancelledByStudent
	case domain.ActorTutor:
		return domain.CancelledByTutor
	default:
		return domain.CancelledAuto
	}
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if !domain.ValidAction(req.Action) {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}

	switch req.Actor {
	case domain.ActorStudent, domain.ActorTutor, domain.ActorSystem, domain.ActorAdmin:
	default:
		return fmt.Errorf("%w: unknown actor %q", ErrInvalidInput, req.Actor)
	}

	if (req.Actor == domain.ActorStudent || req.Actor == domain.ActorTutor) && req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}

	return nil
}
