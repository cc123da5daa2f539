package get_tutor_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/service/availability"
)

const (
	msgInvalidTutorID = "некорректный ID репетитора"
	msgNotFound       = "расписание репетитора не найдено"
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

// Handle GET /api/v1/tutors/{tutorId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tutorIDStr := vars["tutorId"]

	tutorID, err := strconv.ParseInt(tutorIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/availability - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	result, err := h.service.GetByTutorID(r.Context(), tutorID)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrAvailabilityNotFound):
			h.logger.Warn("GET /tutors/{id}/availability - Not found: tutor_id=%d", tutorID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /tutors/{id}/availability - Failed to get availability: tutor_id=%d, error=%v",
				tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tutors/{id}/availability - Availability retrieved: tutor_id=%d", tutorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
