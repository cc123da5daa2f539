package transition_booking

import (
	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings/models"
	transitionBooking "github.com/m04kA/TMS-BookingService/internal/usecase/transition_booking"
)

// TransitionBookingRequest HTTP request model
type TransitionBookingRequest struct {
	Action    string  `json:"action"` // confirm, cancel, start, dispute, restore
	Actor     string  `json:"actor"`  // student, tutor, admin
	Reason    *string `json:"reason,omitempty"`
	RestoreTo *string `json:"restoreTo,omitempty"` // только для restore
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *TransitionBookingRequest) ToUseCaseRequest(bookingID, actorID int64) *transitionBooking.Request {
	req := &transitionBooking.Request{
		BookingID: bookingID,
		Action:    domain.Action(r.Action),
		Actor:     domain.Actor(r.Actor),
		ActorID:   actorID,
		Reason:    r.Reason,
	}

	if r.RestoreTo != nil {
		restoreTo := domain.BookingStatus(*r.RestoreTo)
		req.RestoreTo = &restoreTo
	}

	return req
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
// Репетитору после старта занятия возвращается код завершения
func FromUseCaseResponse(resp *transitionBooking.Response, actor domain.Actor) *models.BookingResponse {
	if actor == domain.ActorTutor {
		return models.FromDomainBookingForTutor(resp.Booking)
	}
	return models.FromDomainBooking(resp.Booking)
}
