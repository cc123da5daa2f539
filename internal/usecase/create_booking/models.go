package create_booking

import (
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	TutorID       int64            // ID репетитора
	StudentID     int64            // ID студента
	Date          time.Time        // Дата бронирования (без времени)
	StartTime     types.TimeString // Время начала слота (например, "10:00")
	Price         float64          // Цена занятия
	PaymentMethod string           // Способ оплаты
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                 int64            // ID созданного бронирования
	TutorID            int64            // ID репетитора
	StudentID          int64            // ID студента
	BookingDate        time.Time        // Дата бронирования
	StartTime          types.TimeString // Время начала
	Status             string           // Статус бронирования (pending)
	Price              float64          // Цена занятия
	PaymentMethod      string           // Способ оплаты
	GracePeriodMinutes int              // Период ожидания подтверждения

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}

// fromDomain конвертирует созданное бронирование в response
func fromDomain(b *domain.Booking) *Response {
	return &Response{
		ID:                 b.ID,
		TutorID:            b.TutorID,
		StudentID:          b.StudentID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime,
		Status:             string(b.Status),
		Price:              b.Price,
		PaymentMethod:      b.PaymentMethod,
		GracePeriodMinutes: b.GracePeriodMinutes,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
