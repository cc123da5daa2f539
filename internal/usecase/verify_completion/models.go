package verify_completion

import "github.com/m04kA/TMS-BookingService/internal/domain"

// Request запрос на верификацию кода завершения
// Код показывается репетитору после старта занятия, студент вводит его,
// подтверждая, что занятие состоялось
type Request struct {
	BookingID int64
	StudentID int64
	Code      string
}

// Response результат верификации
type Response struct {
	Booking *domain.Booking
}
