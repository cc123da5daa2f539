package transition_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/domain"
	transitionBooking "github.com/m04kA/TMS-BookingService/internal/usecase/transition_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgInvalidTransition  = "переход недопустим из текущего статуса"
	msgForbidden          = "доступ запрещен"
	msgTooEarlyToStart    = "занятие еще не должно было начаться"
	msgSystemActor        = "системные действия недоступны через API"
)

type Handler struct {
	useCase TransitionBookingUseCase
	logger  Logger
}

func NewHandler(useCase TransitionBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/transition
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req TransitionBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Завершение и автоотмена выполняются только внутренними путями
	if domain.Actor(req.Actor) == domain.ActorSystem {
		h.logger.Warn("POST /bookings/{id}/transition - System actor rejected: booking_id=%d", bookingID)
		handlers.RespondForbidden(w, msgSystemActor)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/transition - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	useCaseReq := req.ToUseCaseRequest(bookingID, actorID)

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, transitionBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/transition - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, transitionBooking.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/transition - Invalid transition: booking_id=%d, action=%s, actor=%s",
				bookingID, req.Action, req.Actor)
			handlers.RespondUnprocessableEntity(w, msgInvalidTransition)

		case errors.Is(err, transitionBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/transition - Access denied: booking_id=%d, user_id=%d", bookingID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, transitionBooking.ErrTooEarlyToStart):
			h.logger.Warn("POST /bookings/{id}/transition - Too early to start: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgTooEarlyToStart)

		case errors.Is(err, transitionBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/transition - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/transition - Failed to transition: booking_id=%d, action=%s, error=%v",
				bookingID, req.Action, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result, useCaseReq.Actor)

	h.logger.Info("POST /bookings/{id}/transition - Transition applied: booking_id=%d, action=%s, status=%s",
		bookingID, req.Action, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, response)
}
