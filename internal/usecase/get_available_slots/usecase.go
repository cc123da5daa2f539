package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/availability"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// UseCase use case для получения доступных слотов репетитора
// Read-only: без побочных эффектов, может обслуживаться репликой
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: tutor=%d, date=%s", req.TutorID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем расписание репетитора
	availability, err := uc.availabilityRepo.GetByTutorID(ctx, req.TutorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			// Репетитор не опубликовал расписание - бронировать нечего
			uc.logger.Info("GetAvailableSlots: tutor=%d has no published schedule", req.TutorID)
			return uc.emptyResponse(req), nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get availability for tutor=%d: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	// 3. Текущее время в часовом поясе репетитора
	now := uc.timeProvider.Now().In(availability.Location())

	// Слоты в прошлом не отдаём
	if isDateInPast(req.Date, now) {
		return uc.emptyResponse(req), nil
	}

	// 4. Разрешаем расписание на дату: исключение полностью заменяет недельную запись
	day := availability.ScheduleFor(req.Date)
	if !day.Available {
		uc.logger.Info("GetAvailableSlots: tutor=%d is unavailable on %s", req.TutorID, req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req), nil
	}

	// 5. Генерируем слоты по диапазонам дня
	slots, malformed := generateTimeSlots(day)
	for _, rng := range malformed {
		uc.logger.Warn("GetAvailableSlots: tutor=%d date=%s skipping malformed range [%s, %s)",
			req.TutorID, req.Date.Format(domain.DateFormat), rng.Start, rng.End)
	}

	// 6. Убираем занятые слоты
	bookings, err := uc.bookingRepo.GetActiveByTutorAndDate(ctx, req.TutorID, req.Date.Format(domain.DateFormat))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for tutor=%d: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}
	slots = filterBookedSlots(slots, bookings)

	// 7. Для сегодняшней даты отрезаем слоты, начинающиеся слишком скоро
	if isSameDay(req.Date, now) {
		slots = filterSameDaySlots(slots, now)
	}

	uc.logger.Info("GetAvailableSlots: tutor=%d date=%s -> %d slots",
		req.TutorID, req.Date.Format(domain.DateFormat), len(slots))

	return &Response{
		TutorID: req.TutorID,
		Date:    req.Date,
		Slots:   slots,
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request) *Response {
	return &Response{
		TutorID: req.TutorID,
		Date:    req.Date,
		Slots:   []types.TimeString{},
	}
}
