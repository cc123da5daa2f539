package transition_booking

import (
	"github.com/m04kA/TMS-BookingService/internal/domain"
)

// Request модель запроса на переход бронирования
type Request struct {
	BookingID int64         // ID бронирования
	Action    domain.Action // Запрошенное действие
	Actor     domain.Actor  // Роль инициатора
	ActorID   int64         // ID инициатора (для проверки принадлежности)
	Reason    *string       // Причина (для cancel и dispute)

	// RestoreTo целевой дотерминальный статус для административного restore
	// Политика восстановления принадлежит внешнему админскому инструменту
	RestoreTo *domain.BookingStatus
}

// Response модель ответа с бронированием после перехода
type Response struct {
	Booking *domain.Booking
}
