package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRange_IsValid(t *testing.T) {
	assert.True(t, TimeRange{Start: "09:00", End: "12:00"}.IsValid())
	assert.True(t, TimeRange{Start: "23:00", End: "24:00"}.IsValid())
	assert.False(t, TimeRange{Start: "12:00", End: "12:00"}.IsValid())
	assert.False(t, TimeRange{Start: "14:00", End: "09:00"}.IsValid())
}

func TestTutorAvailability_ScheduleFor(t *testing.T) {
	// 2025-10-13 - понедельник, 2025-10-14 - вторник
	monday := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)

	availability := &TutorAvailability{
		TutorID:  1,
		Timezone: "UTC",
		Weekly: map[time.Weekday]DaySchedule{
			time.Monday: Available(TimeRange{Start: "09:00", End: "12:00"}),
		},
		Exceptions: []Exception{
			{Date: tuesday, Schedule: Available(TimeRange{Start: "15:00", End: "17:00"})},
		},
	}

	t.Run("weekly template", func(t *testing.T) {
		day := availability.ScheduleFor(monday)
		require.True(t, day.Available)
		assert.Equal(t, []TimeRange{{Start: "09:00", End: "12:00"}}, day.Ranges)
	})

	t.Run("exception replaces weekly", func(t *testing.T) {
		day := availability.ScheduleFor(tuesday)
		require.True(t, day.Available)
		assert.Equal(t, []TimeRange{{Start: "15:00", End: "17:00"}}, day.Ranges)
	})

	t.Run("exception can close a working day", func(t *testing.T) {
		availability.Exceptions = append(availability.Exceptions, Exception{
			Date:     monday,
			Schedule: Unavailable(),
		})
		day := availability.ScheduleFor(monday)
		assert.False(t, day.Available)
	})

	t.Run("missing weekday is unavailable", func(t *testing.T) {
		sunday := time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC)
		day := availability.ScheduleFor(sunday)
		assert.False(t, day.Available)
	})
}

func TestTutorAvailability_Location(t *testing.T) {
	moscow := &TutorAvailability{Timezone: "Europe/Moscow"}
	loc := moscow.Location()
	assert.Equal(t, "Europe/Moscow", loc.String())

	empty := &TutorAvailability{}
	assert.Equal(t, time.UTC, empty.Location())

	broken := &TutorAvailability{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, broken.Location())
}

func TestBooking_Helpers(t *testing.T) {
	booking := &Booking{
		Status:             StatusPending,
		BookingDate:        time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:          "10:00",
		GracePeriodMinutes: 15,
	}

	assert.True(t, booking.IsActive())
	assert.False(t, booking.IsTerminal())

	start, err := booking.ScheduledStart()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC), start)

	assert.Equal(t, 15*time.Minute, booking.GracePeriod())

	booking.Status = StatusCompleted
	assert.True(t, booking.IsTerminal())
	assert.True(t, booking.CanBeRated())

	booking.HasRated = true
	assert.False(t, booking.CanBeRated())
}
