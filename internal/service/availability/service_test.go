package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	availabilityRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/availability"
	"github.com/m04kA/TMS-BookingService/internal/service/availability/models"
)

type fakeAvailabilityRepo struct {
	stored *domain.TutorAvailability
	getErr error
}

func (f *fakeAvailabilityRepo) GetByTutorID(ctx context.Context, tutorID int64) (*domain.TutorAvailability, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.stored, nil
}

func (f *fakeAvailabilityRepo) Upsert(ctx context.Context, availability *domain.TutorAvailability) (*domain.TutorAvailability, error) {
	f.stored = availability
	return availability, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func validUpsertRequest() *models.UpsertAvailabilityRequest {
	return &models.UpsertAvailabilityRequest{
		Timezone: "Europe/Moscow",
		Weekly: map[string]models.DayScheduleModel{
			"monday": {
				Available: true,
				Ranges:    []models.TimeRangeModel{{Start: "09:00", End: "13:00"}},
			},
			"sunday": {Available: false},
		},
		Exceptions: []models.ExceptionModel{
			{Date: "2025-11-04", Schedule: models.DayScheduleModel{Available: false}},
		},
	}
}

func TestUpsert_SavesSchedule(t *testing.T) {
	repo := &fakeAvailabilityRepo{}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.Upsert(context.Background(), 1, 1, validUpsertRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.TutorID)
	assert.Equal(t, "Europe/Moscow", resp.Timezone)
	require.Contains(t, resp.Weekly, "monday")
	assert.True(t, resp.Weekly["monday"].Available)
	assert.False(t, resp.Weekly["sunday"].Available)
	require.Len(t, resp.Exceptions, 1)
	assert.Equal(t, "2025-11-04", resp.Exceptions[0].Date)

	require.NotNil(t, repo.stored)
	assert.Contains(t, repo.stored.Weekly, time.Monday)
}

func TestUpsert_OnlyOwnerCanChangeSchedule(t *testing.T) {
	svc := NewService(&fakeAvailabilityRepo{}, nopLogger{})

	_, err := svc.Upsert(context.Background(), 1, 2, validUpsertRequest())
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpsert_ValidationErrors(t *testing.T) {
	svc := NewService(&fakeAvailabilityRepo{}, nopLogger{})

	tests := []struct {
		name   string
		mutate func(req *models.UpsertAvailabilityRequest)
	}{
		{"пустая таймзона", func(req *models.UpsertAvailabilityRequest) { req.Timezone = "" }},
		{"неизвестная таймзона", func(req *models.UpsertAvailabilityRequest) { req.Timezone = "Mars/Olympus" }},
		{"неизвестный день недели", func(req *models.UpsertAvailabilityRequest) {
			req.Weekly["someday"] = models.DayScheduleModel{Available: true}
		}},
		{"перевернутый диапазон", func(req *models.UpsertAvailabilityRequest) {
			req.Weekly["monday"] = models.DayScheduleModel{
				Available: true,
				Ranges:    []models.TimeRangeModel{{Start: "13:00", End: "09:00"}},
			}
		}},
		{"некорректное время", func(req *models.UpsertAvailabilityRequest) {
			req.Weekly["monday"] = models.DayScheduleModel{
				Available: true,
				Ranges:    []models.TimeRangeModel{{Start: "9:00", End: "13:00"}},
			}
		}},
		{"некорректная дата исключения", func(req *models.UpsertAvailabilityRequest) {
			req.Exceptions = []models.ExceptionModel{
				{Date: "04.11.2025", Schedule: models.DayScheduleModel{Available: false}},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUpsertRequest()
			tt.mutate(req)
			_, err := svc.Upsert(context.Background(), 1, 1, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGetByTutorID_PublicRead(t *testing.T) {
	repo := &fakeAvailabilityRepo{stored: &domain.TutorAvailability{
		TutorID:  1,
		Timezone: "UTC",
		Weekly: map[time.Weekday]domain.DaySchedule{
			time.Friday: domain.Available(domain.TimeRange{Start: "10:00", End: "18:00"}),
		},
	}}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.GetByTutorID(context.Background(), 1)
	require.NoError(t, err)

	require.Contains(t, resp.Weekly, "friday")
	require.Len(t, resp.Weekly["friday"].Ranges, 1)
	assert.Equal(t, "10:00", resp.Weekly["friday"].Ranges[0].Start)
}

func TestGetByTutorID_NotFound(t *testing.T) {
	repo := &fakeAvailabilityRepo{getErr: availabilityRepo.ErrAvailabilityNotFound}
	svc := NewService(repo, nopLogger{})

	_, err := svc.GetByTutorID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAvailabilityNotFound)
}
