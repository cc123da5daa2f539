package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/TMS-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidTutorID = "некорректный ID репетитора"
	msgMissingDate    = "дата обязательна"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/tutors/{tutorId}/available-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	tutorIDStr := vars["tutorId"]
	tutorID, err := strconv.ParseInt(tutorIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/available-slots - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /tutors/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(tutorID, dateStr)
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /tutors/{id}/available-slots - Invalid input: tutor_id=%d, error=%v", tutorID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /tutors/{id}/available-slots - Failed to get slots: tutor_id=%d, error=%v", tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /tutors/{id}/available-slots - Slots retrieved successfully: tutor_id=%d, date=%s, slots_count=%d",
		tutorID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
