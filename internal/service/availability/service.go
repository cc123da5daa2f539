package availability

import (
	"context"
	"errors"
	"fmt"

	availabilityRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/availability"
	"github.com/m04kA/TMS-BookingService/internal/service/availability/models"
)

// Service сервис для работы с расписаниями репетиторов
type Service struct {
	availabilityRepo AvailabilityRepository
	logger           Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(availabilityRepo AvailabilityRepository, logger Logger) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		logger:           logger,
	}
}

// GetByTutorID получает расписание репетитора
// Публичный метод - расписание видно всем для выбора слота
func (s *Service) GetByTutorID(ctx context.Context, tutorID int64) (*models.AvailabilityResponse, error) {
	s.logger.Info("GetByTutorID: fetching availability for tutor=%d", tutorID)

	availability, err := s.availabilityRepo.GetByTutorID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrAvailabilityNotFound) {
			s.logger.Warn("GetByTutorID: availability for tutor=%d not found", tutorID)
			return nil, ErrAvailabilityNotFound
		}
		s.logger.Error("GetByTutorID: repository error for tutor=%d: %v", tutorID, err)
		return nil, fmt.Errorf("%w: GetByTutorID - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetByTutorID: successfully fetched availability for tutor=%d", tutorID)
	return models.FromDomainAvailability(availability), nil
}

// Upsert сохраняет расписание репетитора
// Расписание может менять только сам репетитор
func (s *Service) Upsert(ctx context.Context, tutorID int64, userID int64, req *models.UpsertAvailabilityRequest) (*models.AvailabilityResponse, error) {
	s.logger.Info("Upsert: saving availability for tutor=%d by user=%d", tutorID, userID)

	if tutorID != userID {
		s.logger.Warn("Upsert: user=%d is not allowed to change availability of tutor=%d", userID, tutorID)
		return nil, ErrAccessDenied
	}

	domainAvailability, err := req.ToDomain(tutorID)
	if err != nil {
		s.logger.Warn("Upsert: validation failed for tutor=%d: %v", tutorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.availabilityRepo.Upsert(ctx, domainAvailability)
	if err != nil {
		s.logger.Error("Upsert: repository error for tutor=%d: %v", tutorID, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully saved availability for tutor=%d", tutorID)
	return models.FromDomainAvailability(saved), nil
}
