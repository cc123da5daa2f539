package domain

import (
	"time"

	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// TimeRange полуинтервал [Start, End) внутри одного дня
type TimeRange struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// IsValid проверяет, что диапазон не вырожден (End строго позже Start)
func (r TimeRange) IsValid() bool {
	return r.End.IsAfter(r.Start)
}

// DaySchedule расписание репетитора на один день
// Либо Available=false без диапазонов, либо Available=true со списком диапазонов
type DaySchedule struct {
	Available bool        `json:"available"`
	Ranges    []TimeRange `json:"ranges,omitempty"`
}

// Unavailable день, закрытый для бронирования
func Unavailable() DaySchedule {
	return DaySchedule{Available: false}
}

// Available день с указанными рабочими диапазонами
func Available(ranges ...TimeRange) DaySchedule {
	return DaySchedule{Available: true, Ranges: ranges}
}

// Exception переопределение недельного расписания на конкретную дату
// Полностью заменяет недельную запись для своей даты, включая флаг доступности
type Exception struct {
	Date     time.Time   `json:"date"`
	Schedule DaySchedule `json:"schedule"`
}

// TutorAvailability расписание репетитора: недельный шаблон плюс исключения
// Weekly ключуется днём недели (0 = воскресенье ... 6 = суббота)
// Мутируется только редактором расписания репетитора (внешний сервис)
type TutorAvailability struct {
	TutorID    int64
	Timezone   string
	Weekly     map[time.Weekday]DaySchedule
	Exceptions []Exception

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleFor возвращает расписание на дату: исключение для точной даты
// полностью заменяет недельную запись, иначе берётся недельный шаблон
func (a *TutorAvailability) ScheduleFor(date time.Time) DaySchedule {
	y, m, d := date.Date()
	for _, exc := range a.Exceptions {
		ey, em, ed := exc.Date.Date()
		if ey == y && em == m && ed == d {
			return exc.Schedule
		}
	}

	if day, ok := a.Weekly[date.Weekday()]; ok {
		return day
	}
	return Unavailable()
}

// Location возвращает часовой пояс репетитора
// При некорректном или пустом значении используется UTC
func (a *TutorAvailability) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
