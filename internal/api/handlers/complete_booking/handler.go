package complete_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings/models"
	completeBooking "github.com/m04kA/TMS-BookingService/internal/usecase/complete_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgInvalidState       = "занятие не находится в процессе"
	msgTooEarly           = "минимальная длительность занятия еще не прошла"
	msgForbidden          = "доступ запрещен"
)

// CompleteBookingRequest HTTP request model
type CompleteBookingRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type Handler struct {
	useCase CompleteBookingUseCase
	logger  Logger
}

func NewHandler(useCase CompleteBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/complete - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Тело опционально: завершение без заметок допустимо
	var req CompleteBookingRequest
	if r.ContentLength > 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("POST /bookings/{id}/complete - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}

	tutorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/complete - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &completeBooking.Request{
		BookingID: bookingID,
		TutorID:   tutorID,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, completeBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/complete - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, completeBooking.ErrInvalidState):
			h.logger.Warn("POST /bookings/{id}/complete - Invalid state: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgInvalidState)

		case errors.Is(err, completeBooking.ErrTooEarlyToComplete):
			h.logger.Warn("POST /bookings/{id}/complete - Too early to complete: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgTooEarly)

		case errors.Is(err, completeBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/complete - Access denied: booking_id=%d, user_id=%d", bookingID, tutorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, completeBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/complete - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/complete - Failed to complete: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := models.FromDomainBooking(result.Booking)

	h.logger.Info("POST /bookings/{id}/complete - Booking completed: booking_id=%d, tutor_id=%d", bookingID, tutorID)
	handlers.RespondJSON(w, http.StatusOK, response)
}
