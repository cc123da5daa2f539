package complete_booking

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

// UseCase use case ручного завершения занятия репетитором
//
// Запасной путь на случай, когда код студента недоступен. Чтобы репетитор
// не мог закрыть занятие сразу после старта, требуется минимальная
// длительность с момента started_at
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

// Execute завершает занятие вручную
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CompleteBooking: booking=%d, tutor=%d", req.BookingID, req.TutorID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CompleteBooking: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CompleteBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CompleteBooking: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	if booking.TutorID != req.TutorID {
		uc.logger.Warn("CompleteBooking: tutor=%d has no access to booking id=%d", req.TutorID, booking.ID)
		return nil, ErrAccessDenied
	}

	if booking.Status != domain.StatusInProgress || booking.StartedAt == nil {
		uc.logger.Warn("CompleteBooking: booking id=%d is in status=%s", booking.ID, booking.Status)
		return nil, ErrInvalidState
	}

	minDuration := time.Duration(domain.ManualCompletionMinMinutes) * time.Minute
	elapsed := uc.timeProvider.Now().Sub(*booking.StartedAt)
	if elapsed < minDuration {
		uc.logger.Warn("CompleteBooking: booking id=%d started %s ago, minimum is %s", booking.ID, elapsed, minDuration)
		return nil, ErrTooEarlyToComplete
	}

	if err := uc.bookingRepo.Complete(ctx, booking.ID, domain.StatusInProgress, domain.CompletionManual, req.Notes); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			uc.logger.Warn("CompleteBooking: concurrent status change for booking id=%d", booking.ID)
			return nil, ErrInvalidState
		}
		uc.logger.Error("CompleteBooking: failed to complete booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to complete booking: %v", ErrInternal, err)
	}

	updated, err := uc.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("CompleteBooking: failed to reread booking id=%d: %v", booking.ID, err)
		// Завершение уже записано: оплату и уведомление не теряем
		completed := *booking
		completed.Status = domain.StatusCompleted
		uc.collectAndNotify(ctx, &completed)
		return nil, fmt.Errorf("%w: failed to reread booking: %v", ErrInternal, err)
	}

	uc.collectAndNotify(ctx, updated)

	uc.logger.Info("CompleteBooking: booking id=%d completed manually by tutor", booking.ID)
	return &Response{Booking: updated}, nil
}

// collectAndNotify списывает оплату и отправляет уведомление о завершении
func (uc *UseCase) collectAndNotify(ctx context.Context, booking *domain.Booking) {
	_, err := uc.paymentClient.CollectPayment(ctx, &paymentservice.CollectRequest{
		BookingID:     booking.ID,
		StudentID:     booking.StudentID,
		TutorID:       booking.TutorID,
		Amount:        booking.Price,
		PaymentMethod: booking.PaymentMethod,
	})
	if err != nil {
		uc.logger.Error("CompleteBooking: payment collection failed for booking id=%d: %v", booking.ID, err)
	}

	event := &notifyservice.BookingEvent{
		BookingID: booking.ID,
		TutorID:   booking.TutorID,
		StudentID: booking.StudentID,
		Status:    string(booking.Status),
		Action:    string(domain.ActionComplete),
		Actor:     string(domain.ActorTutor),
	}
	if err := uc.notifyClient.NotifyBookingEvent(ctx, event); err != nil {
		uc.logger.Warn("CompleteBooking: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.TutorID <= 0 {
		return fmt.Errorf("%w: tutorID must be positive", ErrInvalidInput)
	}
	return nil
}
