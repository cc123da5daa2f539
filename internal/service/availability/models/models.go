package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при неизвестном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInvalidTimezone возвращается при неизвестной таймзоне
	ErrInvalidTimezone = errors.New("invalid timezone")
)

// Дни недели в JSON представлены строчными английскими названиями
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var weekdayKeys = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// Request модели

// TimeRangeModel временной диапазон "HH:MM"-"HH:MM"
type TimeRangeModel struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "13:00", "24:00" допустим как конец дня
}

// DayScheduleModel расписание одного дня
type DayScheduleModel struct {
	Available bool             `json:"available"`
	Ranges    []TimeRangeModel `json:"ranges,omitempty"`
}

// ExceptionModel переопределение расписания на конкретную дату
type ExceptionModel struct {
	Date     string           `json:"date"` // "2025-10-15"
	Schedule DayScheduleModel `json:"schedule"`
}

// UpsertAvailabilityRequest запрос на сохранение расписания репетитора
type UpsertAvailabilityRequest struct {
	Timezone   string                      `json:"timezone"` // IANA, например "Europe/Moscow"
	Weekly     map[string]DayScheduleModel `json:"weekly"`
	Exceptions []ExceptionModel            `json:"exceptions,omitempty"`
}

// ToDomain конвертирует request в domain модель с валидацией
func (r *UpsertAvailabilityRequest) ToDomain(tutorID int64) (*domain.TutorAvailability, error) {
	if r.Timezone == "" {
		return nil, fmt.Errorf("%w: timezone is required", ErrInvalidTimezone)
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, r.Timezone)
	}

	weekly := make(map[time.Weekday]domain.DaySchedule, len(r.Weekly))
	for name, day := range r.Weekly {
		weekday, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
		}
		schedule, err := day.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		weekly[weekday] = schedule
	}

	exceptions := make([]domain.Exception, 0, len(r.Exceptions))
	for _, exc := range r.Exceptions {
		date, err := time.Parse(domain.DateFormat, exc.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid exception date %q", ErrInvalidTimeRange, exc.Date)
		}
		schedule, err := exc.Schedule.toDomain()
		if err != nil {
			return nil, fmt.Errorf("exception %s: %w", exc.Date, err)
		}
		exceptions = append(exceptions, domain.Exception{
			Date:     date,
			Schedule: schedule,
		})
	}

	return &domain.TutorAvailability{
		TutorID:    tutorID,
		Timezone:   r.Timezone,
		Weekly:     weekly,
		Exceptions: exceptions,
	}, nil
}

func (d *DayScheduleModel) toDomain() (domain.DaySchedule, error) {
	if !d.Available {
		return domain.Unavailable(), nil
	}

	ranges := make([]domain.TimeRange, 0, len(d.Ranges))
	for _, r := range d.Ranges {
		start, err := types.NewTimeStringFromString(r.Start)
		if err != nil {
			return domain.DaySchedule{}, fmt.Errorf("%w: start %q", ErrInvalidTimeRange, r.Start)
		}
		end, err := types.NewTimeStringFromString(r.End)
		if err != nil {
			return domain.DaySchedule{}, fmt.Errorf("%w: end %q", ErrInvalidTimeRange, r.End)
		}
		tr := domain.TimeRange{Start: start, End: end}
		if !tr.IsValid() {
			return domain.DaySchedule{}, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, r.Start, r.End)
		}
		ranges = append(ranges, tr)
	}

	return domain.Available(ranges...), nil
}

// Response модели

// AvailabilityResponse ответ с расписанием репетитора
type AvailabilityResponse struct {
	TutorID    int64                       `json:"tutorId"`
	Timezone   string                      `json:"timezone"`
	Weekly     map[string]DayScheduleModel `json:"weekly"`
	Exceptions []ExceptionModel            `json:"exceptions"`
	CreatedAt  time.Time                   `json:"createdAt"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

// FromDomainAvailability конвертирует domain модель в DTO
func FromDomainAvailability(a *domain.TutorAvailability) *AvailabilityResponse {
	if a == nil {
		return nil
	}

	weekly := make(map[string]DayScheduleModel, len(a.Weekly))
	for weekday, schedule := range a.Weekly {
		weekly[weekdayKeys[weekday]] = fromDomainDaySchedule(schedule)
	}

	exceptions := make([]ExceptionModel, 0, len(a.Exceptions))
	for _, exc := range a.Exceptions {
		exceptions = append(exceptions, ExceptionModel{
			Date:     exc.Date.Format(domain.DateFormat),
			Schedule: fromDomainDaySchedule(exc.Schedule),
		})
	}

	return &AvailabilityResponse{
		TutorID:    a.TutorID,
		Timezone:   a.Timezone,
		Weekly:     weekly,
		Exceptions: exceptions,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func fromDomainDaySchedule(d domain.DaySchedule) DayScheduleModel {
	model := DayScheduleModel{Available: d.Available}
	for _, r := range d.Ranges {
		model.Ranges = append(model.Ranges, TimeRangeModel{
			Start: r.Start.String(),
			End:   r.End.String(),
		})
	}
	return model
}
