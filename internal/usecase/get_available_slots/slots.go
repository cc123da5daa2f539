package get_available_slots

import (
	"sort"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// generateTimeSlots генерирует времена начала слотов для дневного расписания
// Слоты идут с фиксированным шагом domain.SlotStepMinutes от начала каждого
// диапазона, пока слот целиком помещается в диапазон [start, end)
//
// Некорректные диапазоны (end <= start) не дают слотов и возвращаются отдельным
// списком для логирования - один испорченный диапазон не валит весь запрос
func generateTimeSlots(day domain.DaySchedule) ([]types.TimeString, []domain.TimeRange) {
	if !day.Available {
		return []types.TimeString{}, nil
	}

	var malformed []domain.TimeRange
	seen := make(map[types.TimeString]struct{})
	slots := make([]types.TimeString, 0)

	for _, rng := range day.Ranges {
		if !rng.IsValid() {
			malformed = append(malformed, rng)
			continue
		}

		current := rng.Start
		for {
			slotEnd, err := current.AddMinutes(domain.SlotStepMinutes)
			if err != nil {
				// Дошли до конца суток
				break
			}
			if slotEnd.IsAfter(rng.End) {
				break
			}

			// Диапазоны могут пересекаться - дубликаты отбрасываем
			if _, ok := seen[current]; !ok {
				seen[current] = struct{}{}
				slots = append(slots, current)
			}

			current, err = current.AddMinutes(domain.SlotStepMinutes)
			if err != nil {
				break
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].IsBefore(slots[j])
	})

	return slots, malformed
}

// filterBookedSlots убирает слоты, время начала которых совпадает с активным бронированием
func filterBookedSlots(slots []types.TimeString, bookings []*domain.Booking) []types.TimeString {
	if len(bookings) == 0 {
		return slots
	}

	booked := make(map[types.TimeString]struct{}, len(bookings))
	for _, b := range bookings {
		if b.IsActive() {
			booked[b.StartTime] = struct{}{}
		}
	}

	available := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		if _, ok := booked[slot]; !ok {
			available = append(available, slot)
		}
	}

	return available
}

// filterSameDaySlots для бронирования на сегодня оставляет только слоты,
// начинающиеся строго больше чем через domain.SameDayNoticeMinutes минут
func filterSameDaySlots(slots []types.TimeString, now time.Time) []types.TimeString {
	cutoff, err := types.NewTimeString(now).AddMinutes(domain.SameDayNoticeMinutes)
	if err != nil {
		// Буфер уходит за полночь - сегодня бронировать уже нечего
		return []types.TimeString{}
	}

	available := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		if slot.IsAfter(cutoff) {
			available = append(available, slot)
		}
	}

	return available
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
