package rate_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotRate         = "оценить можно только завершенное занятие"
	msgAlreadyRated       = "занятие уже оценено"
)

// RateBookingRequest HTTP request model
type RateBookingRequest struct {
	Rating int `json:"rating"`
}

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/rating
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/rating - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/rating - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/rating - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Rate(r.Context(), bookingID, &models.RateBookingRequest{
		StudentID: studentID,
		Rating:    req.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/rating - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/rating - Access denied: booking_id=%d, user_id=%d", bookingID, studentID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrAlreadyRated):
			h.logger.Warn("PATCH /bookings/{id}/rating - Already rated: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgAlreadyRated)

		case errors.Is(err, bookings.ErrCannotRate):
			h.logger.Warn("PATCH /bookings/{id}/rating - Cannot rate: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgCannotRate)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/rating - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /bookings/{id}/rating - Failed to rate: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/rating - Booking rated: booking_id=%d, student_id=%d, rating=%d",
		bookingID, studentID, req.Rating)
	handlers.RespondJSON(w, http.StatusOK, result)
}
