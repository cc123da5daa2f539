package get_student_bookings

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
	msgInvalidUserID = "некорректный ID пользователя"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgInvalidStatus = "некорректный статус бронирования"
)

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

// Handle GET /api/v1/users/{userId}/bookings
// Query params: status (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userIDStr := vars["userId"]

	pathUserID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{id}/bookings - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	authUserID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Свою историю видит только сам студент
	if pathUserID != authUserID {
		h.logger.Warn("GET /users/{id}/bookings - Access denied: path_user_id=%d, auth_user_id=%d",
			pathUserID, authUserID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req := &models.GetStudentBookingsRequest{StudentID: pathUserID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetStudentBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /users/{id}/bookings - Invalid status: user_id=%d", pathUserID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /users/{id}/bookings - Failed to get bookings: user_id=%d, error=%v", pathUserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/{id}/bookings - Bookings retrieved: user_id=%d, count=%d",
		pathUserID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
