package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
//
// Защита слота от двойного бронирования - ключевое свойство корректности:
// проверка занятости и вставка выполняются одной сериализуемой транзакцией
// (FOR UPDATE на активных бронированиях даты), а partial unique index в БД
// отклоняет вставку даже при обходе этого usecase. Клиентский паттерн
// "прочитали слоты - вставили" сюда не допускается
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	notifyClient     NotifyServiceClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		notifyClient:     notifyClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: tutor=%d, student=%d, date=%s, time=%s",
		req.TutorID, req.StudentID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем расписание репетитора
	availability, err := uc.availabilityRepo.GetByTutorID(ctx, req.TutorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			uc.logger.Warn("CreateBooking: tutor=%d has no published schedule", req.TutorID)
			return nil, ErrTutorNotBookable
		}
		uc.logger.Error("CreateBooking: failed to get availability for tutor=%d: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	// 3. Текущее время в часовом поясе репетитора
	now := uc.timeProvider.Now().In(availability.Location())

	// 4. Дата и минимальный запас до начала
	if err := validateBookingTime(req.Date, req.StartTime, now); err != nil {
		uc.logger.Warn("CreateBooking: booking time validation failed: %v", err)
		return nil, err
	}

	// 5. Слот должен предлагаться расписанием (исключение заменяет недельную запись)
	if err := validateSlotOffered(availability.ScheduleFor(req.Date), req.StartTime); err != nil {
		uc.logger.Warn("CreateBooking: slot %s on %s is not offered by tutor=%d schedule",
			req.StartTime, req.Date.Format(domain.DateFormat), req.TutorID)
		return nil, err
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 6. Проверка занятости и вставка - одна сериализуемая транзакция
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Активные бронирования на дату с блокировкой (FOR UPDATE)
		bookings, err := uc.bookingRepo.GetActiveByTutorAndDate(txCtx, req.TutorID, req.Date.Format(domain.DateFormat))
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			// Причина сохраняется через %w: ошибка сериализации должна дойти
			// до цикла повторов в менеджере транзакций
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		// 6.2. Слот занят, если активное бронирование стоит на то же время
		for _, b := range bookings {
			if b.StartTime == req.StartTime {
				uc.logger.Warn("CreateBooking: slot %s on %s already taken by booking id=%d",
					req.StartTime, req.Date.Format(domain.DateFormat), b.ID)
				return ErrSlotNotAvailable
			}
		}

		// 6.3. Создаем бронирование со статусом pending
		booking := &domain.Booking{
			TutorID:            req.TutorID,
			StudentID:          req.StudentID,
			BookingDate:        req.Date,
			StartTime:          req.StartTime,
			Status:             domain.StatusPending,
			Price:              req.Price,
			PaymentMethod:      req.PaymentMethod,
			GracePeriodMinutes: domain.DefaultGracePeriodMinutes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Проигравшая конкурентная транзакция получает детерминированный отказ,
		// а не ошибку сериализации
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateBooking: serialization conflict for tutor=%d date=%s time=%s",
				req.TutorID, req.Date.Format(domain.DateFormat), req.StartTime)
			return nil, ErrSlotNotAvailable
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	// 7. Уведомление - best effort
	event := &notifyservice.BookingEvent{
		BookingID: result.ID,
		TutorID:   result.TutorID,
		StudentID: result.StudentID,
		Status:    string(result.Status),
		Action:    "created",
		Actor:     string(domain.ActorStudent),
	}
	if err := uc.notifyClient.NotifyBookingEvent(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to notify about booking id=%d: %v", result.ID, err)
	}

	return fromDomain(result), nil
}
