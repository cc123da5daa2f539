package get_tutor_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/TMS-BookingService/internal/api/handlers"
	"github.com/m04kA/TMS-BookingService/internal/api/middleware"
	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidTutorID = "некорректный ID репетитора"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "доступ запрещен"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidFilter  = "некорректные параметры фильтра"
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

// Handle GET /api/v1/tutors/{tutorId}/bookings
// Query params: startDate, endDate (YYYY-MM-DD), status, includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tutorIDStr := vars["tutorId"]

	tutorID, err := strconv.ParseInt(tutorIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/bookings - Invalid tutor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTutorID)
		return
	}

	authUserID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /tutors/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Бронирования репетитора видит только он сам
	if tutorID != authUserID {
		h.logger.Warn("GET /tutors/{id}/bookings - Access denied: tutor_id=%d, auth_user_id=%d", tutorID, authUserID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req, err := parseFilter(tutorID, r)
	if err != nil {
		h.logger.Warn("GET /tutors/{id}/bookings - Invalid filter: tutor_id=%d, error=%v", tutorID, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetTutorBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /tutors/{id}/bookings - Invalid filter: tutor_id=%d", tutorID)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /tutors/{id}/bookings - Failed to get bookings: tutor_id=%d, error=%v", tutorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tutors/{id}/bookings - Bookings retrieved: tutor_id=%d, count=%d",
		tutorID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseFilter собирает фильтр из query параметров
func parseFilter(tutorID int64, r *http.Request) (*models.GetTutorBookingsRequest, error) {
	req := &models.GetTutorBookingsRequest{TutorID: tutorID}

	query := r.URL.Query()

	if startDate := query.Get("startDate"); startDate != "" {
		parsed, err := time.Parse(domain.DateFormat, startDate)
		if err != nil {
			return nil, err
		}
		req.StartDate = &parsed
	}

	if endDate := query.Get("endDate"); endDate != "" {
		parsed, err := time.Parse(domain.DateFormat, endDate)
		if err != nil {
			return nil, err
		}
		req.EndDate = &parsed
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if include := query.Get("includeInactive"); include != "" {
		parsed, err := strconv.ParseBool(include)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = parsed
	}

	return req, nil
}
