package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeString время в формате "HH:MM" (например, "10:00")
// Используется для хранения времени слотов без привязки к дате и часовому поясу
type TimeString string

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOutOfRange возвращается, когда результат операции выходит за пределы суток
	ErrTimeOutOfRange = errors.New("time is out of range")
)

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет, что значение соответствует формату "HH:MM"
// Специальное значение "24:00" допустимо как конец диапазона [start, end)
func (t TimeString) Validate() error {
	if t == "24:00" {
		return nil
	}
	if _, err := time.Parse("15:04", string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero проверяет, что значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление времени
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с начала суток
func (t TimeString) Minutes() (int, error) {
	if t == "24:00" {
		return 24 * 60, nil
	}
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes возвращает время, сдвинутое на указанное количество минут вперёд
// Возвращает ошибку, если результат выходит за пределы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}

	total += minutes
	if total < 0 || total > 24*60 {
		return "", fmt.Errorf("%w: %s + %d minutes", ErrTimeOutOfRange, t, minutes)
	}
	if total == 24*60 {
		return TimeString("24:00"), nil
	}

	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore проверяет, что время строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	a, err1 := t.Minutes()
	b, err2 := other.Minutes()
	if err1 != nil || err2 != nil {
		return false
	}
	return a < b
}

// IsAfter проверяет, что время строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	a, err1 := t.Minutes()
	b, err2 := other.Minutes()
	if err1 != nil || err2 != nil {
		return false
	}
	return a > b
}

// OnDate совмещает время с указанной датой в её локации
func (t TimeString) OnDate(date time.Time) (time.Time, error) {
	total, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).
		Add(time.Duration(total) * time.Minute), nil
}

// Scan реализует sql.Scanner
// Postgres возвращает колонки типа TIME как "HH:MM:SS" - секунды отбрасываем
func (t *TimeString) Scan(value interface{}) error {
	if value == nil {
		*t = ""
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, value)
	}

	if len(s) >= 5 {
		s = s[:5]
	}

	ts, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}
