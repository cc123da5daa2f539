package complete_booking

import "github.com/m04kA/TMS-BookingService/internal/domain"

// Request запрос на ручное завершение занятия репетитором
type Request struct {
	BookingID int64
	TutorID   int64
	Notes     *string
}

// Response результат завершения
type Response struct {
	Booking *domain.Booking
}
