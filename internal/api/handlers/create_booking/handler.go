package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	createBooking "github.com/m04kA/TMS-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgTutorNotBookable   = "репетитор недоступен для бронирования"
	msgInvalidDate        = "некорректная дата бронирования"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Получаем studentID из контекста (через middleware Auth)
	studentID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(studentID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: student_id=%d, tutor_id=%d", studentID, req.TutorID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrTutorNotBookable):
			h.logger.Warn("POST /bookings - Tutor not bookable: tutor_id=%d", req.TutorID)
			handlers.RespondNotFound(w, msgTutorNotBookable)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: student_id=%d, tutor_id=%d", studentID, req.TutorID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: student_id=%d, tutor_id=%d", studentID, req.TutorID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: student_id=%d, error=%v", studentID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings - Failed to create booking: student_id=%d, tutor_id=%d, error=%v",
				studentID, req.TutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, student_id=%d, tutor_id=%d",
		result.ID, studentID, req.TutorID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
