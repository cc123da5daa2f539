package update_tutor_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/service/availability"
	"github.com/m04kA/TMS-BookingService/internal/service/availability/models"
)

const (
	msgInvalidTutorID     = "некорректный ID репетитора"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgInvalidSchedule    = "некорректное расписание"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/tutors/{tutorId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tutorIDStr := vars["tutorId"]

	tutorID, err := strconv.ParseInt(tutorIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PUT /tutors/{id}/availability - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	var req models.UpsertAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /tutors/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /tutors/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Upsert(r.Context(), tutorID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("PUT /tutors/{id}/availability - Access denied: tutor_id=%d, user_id=%d", tutorID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PUT /tutors/{id}/availability - Invalid schedule: tutor_id=%d, error=%v", tutorID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		default:
			h.logger.Error("PUT /tutors/{id}/availability - Failed to save availability: tutor_id=%d, error=%v",
				tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /tutors/{id}/availability - Availability saved: tutor_id=%d", tutorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
