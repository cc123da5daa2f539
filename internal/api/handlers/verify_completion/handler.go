package verify_completion

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings/models"
	verifyCompletion "github.com/m04kA/TMS-BookingService/internal/usecase/verify_completion"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgInvalidCode        = "неверный код завершения"
	msgInvalidState       = "занятие не находится в процессе"
	msgForbidden          = "доступ запрещен"
)

// VerifyCompletionRequest HTTP request model
type VerifyCompletionRequest struct {
	Code string `json:"code"`
}

type Handler struct {
	useCase VerifyCompletionUseCase
	logger  Logger
}

func NewHandler(useCase VerifyCompletionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/verify-completion
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/verify-completion - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req VerifyCompletionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/verify-completion - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/verify-completion - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &verifyCompletion.Request{
		BookingID: bookingID,
		StudentID: studentID,
		Code:      req.Code,
	})
	if err != nil {
		switch {
		case errors.Is(err, verifyCompletion.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/verify-completion - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, verifyCompletion.ErrInvalidCode):
			h.logger.Warn("POST /bookings/{id}/verify-completion - Invalid code: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgInvalidCode)

		case errors.Is(err, verifyCompletion.ErrInvalidState):
			h.logger.Warn("POST /bookings/{id}/verify-completion - Invalid state: booking_id=%d", bookingID)
			handlers.RespondUnprocessableEntity(w, msgInvalidState)

		case errors.Is(err, verifyCompletion.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/verify-completion - Access denied: booking_id=%d, user_id=%d",
				bookingID, studentID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, verifyCompletion.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/verify-completion - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/verify-completion - Failed to verify: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := models.FromDomainBooking(result.Booking)

	h.logger.Info("POST /bookings/{id}/verify-completion - Booking completed: booking_id=%d, student_id=%d",
		bookingID, studentID)
	handlers.RespondJSON(w, http.StatusOK, response)
}
