package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/service/bookings/models"
)

// Service сервис для чтения и оценки бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Бронирование видят только его студент и репетитор; репетитор дополнительно
// получает код завершения идущего занятия
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	switch userID {
	case booking.TutorID:
		return models.FromDomainBookingForTutor(booking), nil
	case booking.StudentID:
		return models.FromDomainBooking(booking), nil
	default:
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}
}

// GetStudentBookings получает историю бронирований студента
// Опционально фильтрует по статусу
func (s *Service) GetStudentBookings(ctx context.Context, req *models.GetStudentBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetStudentBookings: fetching bookings for student=%d, status=%v", req.StudentID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetStudentBookings: invalid status=%s for student=%d", *req.Status, req.StudentID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByStudentID(ctx, req.StudentID, domainStatus)
	if err != nil {
		s.logger.Error("GetStudentBookings: repository error for student=%d: %v", req.StudentID, err)
		return nil, fmt.Errorf("%w: GetStudentBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStudentBookings: successfully fetched %d bookings for student=%d", len(bookings), req.StudentID)
	return models.FromDomainBookingList(bookings), nil
}

// GetTutorBookings получает бронирования репетитора с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению терминальных
// бронирований
//
// Примеры использования:
// - Все активные бронирования: GetTutorBookings(ctx, &GetTutorBookingsRequest{TutorID: 123})
// - Бронирования на дату: StartDate и EndDate указывают на одну дату
// - Бронирования за период: StartDate и EndDate указывают на разные даты
// - Только подтвержденные: указать Status = "confirmed"
// - Включая завершенные и отмененные: IncludeInactive = true
func (s *Service) GetTutorBookings(ctx context.Context, req *models.GetTutorBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetTutorBookings: fetching bookings for tutor=%d", req.TutorID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetTutorBookings: invalid filter for tutor=%d: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByTutorWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetTutorBookings: repository error for tutor=%d: %v", req.TutorID, err)
		return nil, fmt.Errorf("%w: GetTutorBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetTutorBookings: successfully fetched %d bookings for tutor=%d", len(bookings), req.TutorID)
	return models.FromDomainBookingList(bookings), nil
}

// Rate выставляет оценку завершенному занятию
// Оценить может только студент бронирования, ровно один раз
func (s *Service) Rate(ctx context.Context, bookingID int64, req *models.RateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Rate: rating booking id=%d by student=%d", bookingID, req.StudentID)

	if req.Rating < domain.MinStudentRating || req.Rating > domain.MaxStudentRating {
		s.logger.Warn("Rate: invalid rating=%d for booking id=%d", req.Rating, bookingID)
		return nil, fmt.Errorf("%w: rating must be between %d and %d",
			ErrInvalidInput, domain.MinStudentRating, domain.MaxStudentRating)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Rate: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Rate: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Rate - repository error: %v", ErrInternal, err)
	}

	if booking.StudentID != req.StudentID {
		s.logger.Warn("Rate: access denied for student=%d to booking id=%d", req.StudentID, bookingID)
		return nil, ErrAccessDenied
	}

	if !booking.CanBeRated() {
		s.logger.Warn("Rate: booking id=%d cannot be rated, status=%s, hasRated=%v",
			bookingID, booking.Status, booking.HasRated)
		if booking.HasRated {
			return nil, ErrAlreadyRated
		}
		return nil, ErrCannotRate
	}

	if err := s.bookingRepo.SetRating(ctx, bookingID, req.Rating); err != nil {
		if errors.Is(err, bookingRepo.ErrAlreadyRated) {
			s.logger.Warn("Rate: booking id=%d already rated", bookingID)
			return nil, ErrAlreadyRated
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Rate: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Rate - repository error: %v", ErrInternal, err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		s.logger.Error("Rate: failed to reread booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Rate - failed to reread booking: %v", ErrInternal, err)
	}

	s.logger.Info("Rate: successfully rated booking id=%d with rating=%d", bookingID, req.Rating)
	return models.FromDomainBooking(updated), nil
}
