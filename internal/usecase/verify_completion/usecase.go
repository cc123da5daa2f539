package verify_completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
)

// UseCase use case верификации кода завершения занятия
//
// Код выдается при старте занятия и показывается репетитору: студент,
// вводя его, подтверждает, что занятие действительно состоялось. Неудачная
// попытка фиксируется в completion_attempts, статус не меняется
type UseCase struct {
	bookingRepo   BookingRepository
	paymentClient PaymentServiceClient
	notifyClient  NotifyServiceClient
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
		logger:        logger,
	}
}

// Execute верифицирует код и завершает занятие при совпадении
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("VerifyCompletion: booking=%d, student=%d", req.BookingID, req.StudentID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("VerifyCompletion: validation failed: %v", err)
		return nil, err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("VerifyCompletion: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("VerifyCompletion: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}

	if booking.StudentID != req.StudentID {
		uc.logger.Warn("VerifyCompletion: student=%d has no access to booking id=%d", req.StudentID, booking.ID)
		return nil, ErrAccessDenied
	}

	if booking.Status != domain.StatusInProgress {
		uc.logger.Warn("VerifyCompletion: booking id=%d is in status=%s", booking.ID, booking.Status)
		return nil, ErrInvalidState
	}

	if booking.CompletionCode == nil {
		uc.logger.Error("VerifyCompletion: booking id=%d is in_progress without completion code", booking.ID)
		return nil, fmt.Errorf("%w: completion code is not issued", ErrInternal)
	}

	if strings.TrimSpace(req.Code) != *booking.CompletionCode {
		if incErr := uc.bookingRepo.IncrementCompletionAttempts(ctx, booking.ID); incErr != nil {
			uc.logger.Error("VerifyCompletion: failed to record attempt for booking id=%d: %v", booking.ID, incErr)
		}
		uc.logger.Warn("VerifyCompletion: code mismatch for booking id=%d (attempt %d)",
			booking.ID, booking.CompletionAttempts+1)
		return nil, ErrInvalidCode
	}

	if err := uc.bookingRepo.Complete(ctx, booking.ID, domain.StatusInProgress, domain.CompletionManual, nil); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			uc.logger.Warn("VerifyCompletion: concurrent status change for booking id=%d", booking.ID)
			return nil, ErrInvalidState
		}
		uc.logger.Error("VerifyCompletion: failed to complete booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to complete booking: %v", ErrInternal, err)
	}

	updated, err := uc.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		uc.logger.Error("VerifyCompletion: failed to reread booking id=%d: %v", booking.ID, err)
		// Завершение уже записано: оплату и уведомление не теряем
		completed := *booking
		completed.Status = domain.StatusCompleted
		uc.collectAndNotify(ctx, &completed)
		return nil, fmt.Errorf("%w: failed to reread booking: %v", ErrInternal, err)
	}

	uc.collectAndNotify(ctx, updated)

	uc.logger.Info("VerifyCompletion: booking id=%d completed manually", booking.ID)
	return &Response{Booking: updated}, nil
}

// collectAndNotify списывает оплату и отправляет уведомление о завершении
// Сбой оплаты логируется и не откатывает завершение, уведомление - best effort
func (uc *UseCase) collectAndNotify(ctx context.Context, booking *domain.Booking) {
	_, err := uc.paymentClient.CollectPayment(ctx, &paymentservice.CollectRequest{
		BookingID:     booking.ID,
		StudentID:     booking.StudentID,
		TutorID:       booking.TutorID,
		Amount:        booking.Price,
		PaymentMethod: booking.PaymentMethod,
	})
	if err != nil {
		uc.logger.Error("VerifyCompletion: payment collection failed for booking id=%d: %v", booking.ID, err)
	}

	event := &notifyservice.BookingEvent{
		BookingID: booking.ID,
		TutorID:   booking.TutorID,
		StudentID: booking.StudentID,
		Status:    string(booking.Status),
		Action:    string(domain.ActionComplete),
		Actor:     string(domain.ActorStudent),
	}
	if err := uc.notifyClient.NotifyBookingEvent(ctx, event); err != nil {
		uc.logger.Warn("VerifyCompletion: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", ErrInvalidInput)
	}

	code := strings.TrimSpace(req.Code)
	if len(code) != domain.CompletionCodeLength {
		return fmt.Errorf("%w: code must contain %d digits", ErrInvalidInput, domain.CompletionCodeLength)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: code must contain only digits", ErrInvalidInput)
		}
	}

	return nil
}
