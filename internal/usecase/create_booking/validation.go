package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.TutorID <= 0 {
		return fmt.Errorf("%w: tutorID must be positive", ErrInvalidInput)
	}

	if req.StudentID <= 0 {
		return fmt.Errorf("%w: studentID must be positive", ErrInvalidInput)
	}

	if req.TutorID == req.StudentID {
		return fmt.Errorf("%w: tutor cannot book own slot", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	if req.PaymentMethod == "" {
		return fmt.Errorf("%w: paymentMethod is required", ErrInvalidInput)
	}

	return nil
}

// validateSlotOffered проверяет, что запрошенный слот действительно предлагается
// расписанием репетитора: день открыт и время начала совпадает с одним из
// генерируемых слотов
func validateSlotOffered(day domain.DaySchedule, startTime types.TimeString) error {
	if !day.Available {
		return ErrSlotNotAvailable
	}

	for _, rng := range day.Ranges {
		// Некорректный диапазон не предлагает слотов
		if !rng.IsValid() {
			continue
		}

		current := rng.Start
		for {
			slotEnd, err := current.AddMinutes(domain.SlotStepMinutes)
			if err != nil || slotEnd.IsAfter(rng.End) {
				break
			}
			if current == startTime {
				return nil
			}
			current, err = current.AddMinutes(domain.SlotStepMinutes)
			if err != nil {
				break
			}
		}
	}

	return ErrSlotNotAvailable
}

// validateBookingTime проверяет дату и минимальный запас до начала слота
func validateBookingTime(bookingDate time.Time, startTime types.TimeString, now time.Time) error {
	if isDateInPast(bookingDate, now) {
		return ErrInvalidDate
	}

	// Для бронирования не на сегодня запас не проверяется
	if !isSameDay(bookingDate, now) {
		return nil
	}

	cutoff, err := types.NewTimeString(now).AddMinutes(domain.SameDayNoticeMinutes)
	if err != nil {
		return ErrTooLateToBook
	}

	// Время начала должно быть строго больше, чем сейчас + запас
	if !startTime.IsAfter(cutoff) {
		return fmt.Errorf("%w: must book more than %d minutes in advance", ErrTooLateToBook, domain.SameDayNoticeMinutes)
	}

	return nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
